package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"livepoll/internal/domain"
	"livepoll/internal/service"
	"livepoll/pkg/errors"
	"livepoll/pkg/logger"
)

type VoteHandler struct {
	voteService *service.VoteService
	logger      *logger.Logger
}

func NewVoteHandler(voteService *service.VoteService, logger *logger.Logger) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		logger:      logger,
	}
}

// Submit handles POST /api/polls/{slug}/vote (public, no authentication)
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	vote, err := h.voteService.SubmitVote(r.Context(), chi.URLParam(r, "slug"), &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, vote)
}

// Results handles GET /api/polls/{slug}/results (public)
func (h *VoteHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.voteService.Results(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}
