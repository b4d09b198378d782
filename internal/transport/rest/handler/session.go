package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
	"github.com/chudo9991/more.tech.2025-sub000/internal/service"
)

// SessionHandler handles interview session endpoints
type SessionHandler struct {
	sessionRepo repository.SessionRepo
	navSvc      *service.NavigationService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionRepo repository.SessionRepo, navSvc *service.NavigationService) *SessionHandler {
	return &SessionHandler{
		sessionRepo: sessionRepo,
		navSvc:      navSvc,
	}
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	VacancyID   string `json:"vacancyId"`
	CandidateID string `json:"candidateId"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VacancyID == "" {
		writeError(w, http.StatusBadRequest, "vacancyId is required")
		return
	}

	session := &model.Session{
		VacancyID:   req.VacancyID,
		CandidateID: req.CandidateID,
		Status:      model.SessionCreated,
	}
	if err := h.sessionRepo.Create(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Next handles POST /v1/sessions/{sessionId}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	next, err := h.navSvc.GetNextQuestion(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, next)
}

// SubmitAnswerRequest is the request body for recording an answer
type SubmitAnswerRequest struct {
	QuestionID string  `json:"questionId"`
	AnswerText string  `json:"answerText"`
	Score      float64 `json:"score"`
}

// SubmitAnswer handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	update, err := h.navSvc.UpdateContextAfterAnswer(r.Context(), sessionID, req.QuestionID, req.AnswerText, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, update)
}

// Transitions handles GET /v1/sessions/{sessionId}/transitions
func (h *SessionHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	views, err := h.navSvc.GetAvailableTransitions(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"transitions": views})
}

// Context handles GET /v1/sessions/{sessionId}/context
func (h *SessionHandler) Context(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	sc, err := h.navSvc.GetContext(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sc)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrNodeNotFound),
		errors.Is(err, service.ErrVacancyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrScenarioNotConfigured):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
