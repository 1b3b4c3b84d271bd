package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"livepoll/internal/domain"
	"livepoll/internal/service"
	"livepoll/pkg/errors"
	"livepoll/pkg/logger"
)

type PollHandler struct {
	pollService *service.PollService
	logger      *logger.Logger
}

func NewPollHandler(pollService *service.PollService, logger *logger.Logger) *PollHandler {
	return &PollHandler{
		pollService: pollService,
		logger:      logger,
	}
}

// ReorderRequest carries the desired question ordering for a poll.
type ReorderRequest struct {
	QuestionIDs []int64 `json:"question_ids"`
}

// Create handles POST /api/polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.PollCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	poll, err := h.pollService.CreatePoll(r.Context(), ownerID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, poll)
}

// List handles GET /api/polls
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active_only"))

	polls, err := h.pollService.ListPolls(r.Context(), ownerID, activeOnly)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"polls": polls,
		"count": len(polls),
	})
}

// Get handles GET /api/polls/{slug} (public, used by viewer pages)
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	poll, err := h.pollService.GetPoll(r.Context(), slug)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// Update handles PUT /api/polls/{slug}
func (h *PollHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.PollUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	poll, err := h.pollService.UpdatePoll(r.Context(), ownerID, chi.URLParam(r, "slug"), &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// Delete handles DELETE /api/polls/{slug}
func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	if err := h.pollService.DeletePoll(r.Context(), ownerID, chi.URLParam(r, "slug")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Close handles POST /api/polls/{slug}/close
func (h *PollHandler) Close(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	poll, err := h.pollService.ClosePoll(r.Context(), ownerID, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// Reopen handles POST /api/polls/{slug}/reopen
func (h *PollHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	poll, err := h.pollService.ReopenPoll(r.Context(), ownerID, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// AddQuestion handles POST /api/polls/{slug}/questions
func (h *PollHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.QuestionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	question, err := h.pollService.AddQuestion(r.Context(), ownerID, chi.URLParam(r, "slug"), &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, question)
}

// UpdateQuestion handles PUT /api/polls/{slug}/questions/{questionID}
func (h *PollHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	questionID, err := h.questionID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req domain.QuestionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	question, err := h.pollService.UpdateQuestion(r.Context(), ownerID, chi.URLParam(r, "slug"), questionID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, question)
}

// DeleteQuestion handles DELETE /api/polls/{slug}/questions/{questionID}
func (h *PollHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	questionID, err := h.questionID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.pollService.DeleteQuestion(r.Context(), ownerID, chi.URLParam(r, "slug"), questionID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderQuestions handles POST /api/polls/{slug}/questions/reorder
func (h *PollHandler) ReorderQuestions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userID(r)
	if !ok {
		respondError(w, r, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	if err := h.pollService.ReorderQuestions(r.Context(), ownerID, chi.URLParam(r, "slug"), req.QuestionIDs); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	poll, err := h.pollService.GetPoll(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) questionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("Invalid question ID", nil)
	}
	return id, nil
}
