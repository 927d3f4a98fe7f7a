package insights

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/objectiveprep/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/insights", h.Get).Methods("GET")
	api.HandleFunc("/insights", h.Merge).Methods("POST")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseGroupIDParam(r.URL.Query().Get("groupId"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid groupId"})
		return
	}

	current, err := h.store.GetScope(r.Context(), groupID)
	if err != nil {
		log.Printf("[handler] insights Get error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read insights"})
		return
	}

	lists := models.InsightLists{WeakPoints: []string{}, StrongPoints: []string{}, StudyPlan: []string{}}
	if current != nil {
		lists = models.InsightLists{
			WeakPoints:   current.WeakPoints,
			StrongPoints: current.StrongPoints,
			StudyPlan:    current.StudyPlan,
		}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req models.MergeInsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	merged, err := h.store.MergeScope(r.Context(), req.GroupID, Lists{
		WeakPoints:   req.WeakPoints,
		StrongPoints: req.StrongPoints,
		StudyPlan:    req.StudyPlan,
	})
	if err != nil {
		log.Printf("[handler] insights Merge error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to merge insights"})
		return
	}

	writeJSON(w, http.StatusOK, models.InsightLists{
		WeakPoints:   merged.WeakPoints,
		StrongPoints: merged.StrongPoints,
		StudyPlan:    merged.StudyPlan,
	})
}

// parseGroupIDParam reads an optional numeric groupId query parameter.
// An absent parameter means the global scope.
func parseGroupIDParam(param string) (*int64, bool) {
	if param == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
