package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chudo9991/more.tech.2025-sub000/internal/service"
)

// QuestionHandler handles contextual question endpoints
type QuestionHandler struct {
	genSvc *service.ContextualQuestionGenerator
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(genSvc *service.ContextualQuestionGenerator) *QuestionHandler {
	return &QuestionHandler{genSvc: genSvc}
}

// GenerateRequest is the request body for question generation
type GenerateRequest struct {
	MaxCount int `json:"maxCount"`
}

// Generate handles POST /v1/sessions/{sessionId}/nodes/{nodeId}/questions
func (h *QuestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]
	nodeID := vars["nodeId"]

	var req GenerateRequest
	if r.Body != nil {
		// An empty body means the default batch size.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.genSvc.Generate(r.Context(), sessionID, nodeID, req.MaxCount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Status handles GET /v1/sessions/{sessionId}/nodes/{nodeId}/questions/status
func (h *QuestionHandler) Status(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	status, err := h.genSvc.Status(r.Context(), vars["sessionId"], vars["nodeId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
