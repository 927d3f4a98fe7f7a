package quiz

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/objectiveprep/backend/internal/models"
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 100
	defaultAttemptsLimit = 20
	maxAttemptsLimit     = 100
)

type Handler struct {
	service *Service
	store   *Store
}

func NewHandler(service *Service, store *Store) *Handler {
	return &Handler{service: service, store: store}
}

func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/quiz/generate", h.Generate).Methods("POST")
	api.HandleFunc("/quiz/feedback", h.Feedback).Methods("POST")
	api.HandleFunc("/quiz/attempts", h.ListAttempts).Methods("GET")
	api.HandleFunc("/quiz/attempts/{id}", h.GetAttempt).Methods("GET")
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Mode == "" {
		req.Mode = ModeMCQ
	}
	if !ValidModes[req.Mode] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "mode must be mcq or short"})
		return
	}
	if req.Count == 0 {
		req.Count = defaultQuestionCount
	}
	if req.Count < 1 || req.Count > maxQuestionCount {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "count must be between 1 and 100"})
		return
	}

	quiz, err := h.service.GenerateQuiz(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "Generate", err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type feedbackBody struct {
	Quiz           json.RawMessage `json:"quiz"`
	Answers        []any           `json:"answers"`
	GroupID        *int64          `json:"groupId"`
	Domain         string          `json:"domain"`
	EnforceQuality bool            `json:"enforceQuality"`
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var body feedbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(body.Quiz) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quiz is required"})
		return
	}

	// The submitted quiz passes through the same validator as a fresh
	// generation, so downstream code never sees an unchecked shape.
	var rawQuiz any
	if err := json.Unmarshal(body.Quiz, &rawQuiz); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quiz must be valid JSON"})
		return
	}
	quiz, err := ParseQuiz(rawQuiz)
	if err != nil {
		h.writeServiceError(w, "Feedback", err)
		return
	}

	if body.Answers == nil {
		body.Answers = []any{}
	}

	resp, err := h.service.SubmitFeedback(r.Context(), FeedbackRequest{
		Quiz:           quiz,
		Answers:        body.Answers,
		GroupID:        body.GroupID,
		Domain:         body.Domain,
		EnforceQuality: body.EnforceQuality,
	})
	if err != nil {
		h.writeServiceError(w, "Feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAttemptsLimit
	if param := r.URL.Query().Get("limit"); param != "" {
		n, err := strconv.Atoi(param)
		if err != nil || n < 1 || n > maxAttemptsLimit {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	attempts, err := h.store.ListAttempts(r.Context(), limit)
	if err != nil {
		log.Printf("[handler] quiz ListAttempts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list attempts"})
		return
	}
	if attempts == nil {
		attempts = []Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid attempt id"})
		return
	}

	attempt, err := h.store.GetAttempt(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Attempt not found"})
			return
		}
		log.Printf("[handler] quiz GetAttempt error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read attempt"})
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

// writeServiceError maps pipeline errors onto the HTTP taxonomy:
// validation and request shape problems are 400s, oracle malformation
// after the retry budget is a 502, everything else a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:  "Validation failed",
			Issues: vErr.Issues,
		})
		return
	}

	var oErr *OracleError
	if errors.As(err, &oErr) {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{
			Error:   oErr.Reason,
			Snippet: oErr.Snippet,
		})
		return
	}

	switch {
	case errors.Is(err, ErrNoObjectives):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No objectives provided or found"})
	case errors.Is(err, ErrAnswersMismatch):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Answers length must match question count"})
	default:
		log.Printf("[handler] quiz %s error: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
