package objectives

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/objectiveprep/backend/internal/models"
)

const maxObjectiveLength = 1000

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/objectives", h.List).Methods("GET")
	api.HandleFunc("/objectives", h.Create).Methods("POST")
	api.HandleFunc("/objectives", h.DeleteAll).Methods("DELETE")
	api.HandleFunc("/objectives/bulk", h.BulkCreate).Methods("POST")
	api.HandleFunc("/objectives/{id}", h.Update).Methods("PATCH")
	api.HandleFunc("/objectives/{id}", h.Delete).Methods("DELETE")
	api.HandleFunc("/groups", h.ListGroups).Methods("GET")
	api.HandleFunc("/groups", h.CreateGroup).Methods("POST")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	objectives, err := h.store.ListObjectives(r.Context())
	if err != nil {
		log.Printf("[handler] objectives List error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list objectives"})
		return
	}
	if objectives == nil {
		objectives = []models.Objective{}
	}
	writeJSON(w, http.StatusOK, objectives)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	text, ok := normalizeText(req.Text)
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Objective text must be 1-1000 characters"})
		return
	}

	objective, err := h.store.CreateObjective(r.Context(), text)
	if err != nil {
		log.Printf("[handler] objectives Create error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create objective"})
		return
	}
	writeJSON(w, http.StatusCreated, objective)
}

func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req models.BulkObjectivesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "items must be a non-empty array"})
		return
	}

	// Trim and drop duplicates within the batch before hitting the DB.
	seen := make(map[string]bool, len(req.Items))
	items := make([]string, 0, len(req.Items))
	for _, raw := range req.Items {
		text, ok := normalizeText(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Each objective must be 1-1000 characters"})
			return
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		items = append(items, text)
	}

	inserted, err := h.store.BulkCreate(r.Context(), items, req.GroupID)
	if err != nil {
		log.Printf("[handler] objectives BulkCreate error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to import objectives"})
		return
	}

	objectives, err := h.store.ListObjectives(r.Context())
	if err != nil {
		log.Printf("[handler] objectives BulkCreate list error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list objectives"})
		return
	}
	if objectives == nil {
		objectives = []models.Objective{}
	}

	writeJSON(w, http.StatusCreated, models.BulkObjectivesResponse{
		Inserted:   inserted,
		Objectives: objectives,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid objective id"})
		return
	}

	var req models.CreateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	text, ok := normalizeText(req.Text)
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Objective text must be 1-1000 characters"})
		return
	}

	objective, err := h.store.UpdateObjective(r.Context(), id, text)
	if err != nil {
		log.Printf("[handler] objectives Update error: %v", err)
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Objective not found"})
		return
	}
	writeJSON(w, http.StatusOK, objective)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid objective id"})
		return
	}

	if err := h.store.DeleteObjective(r.Context(), id); err != nil {
		log.Printf("[handler] objectives Delete error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete objective"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAllObjectives(r.Context()); err != nil {
		log.Printf("[handler] objectives DeleteAll error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete objectives"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	// The default group is upserted and ungrouped objectives adopted
	// into it before every listing, so clients always see it.
	group, err := h.store.EnsureDefaultGroup(r.Context())
	if err != nil {
		log.Printf("[handler] groups ensure default error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list groups"})
		return
	}
	if err := h.store.ReassignUngrouped(r.Context(), group.ID); err != nil {
		log.Printf("[handler] groups reassign error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list groups"})
		return
	}

	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		log.Printf("[handler] groups List error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list groups"})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Group name must be 1-100 characters"})
		return
	}

	group, err := h.store.CreateGroup(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Group name already exists"})
			return
		}
		log.Printf("[handler] groups Create error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create group"})
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func normalizeText(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || len(text) > maxObjectiveLength {
		return "", false
	}
	return text, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
