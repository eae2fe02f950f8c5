package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type createPollRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsActive    *bool      `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Options     []string   `json:"options"`
}

type updatePollRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Options     []string   `json:"options"`
}

// CreatePoll godoc
// @Summary      Creates a poll
// @Tags         polls
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Router       /api/polls [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		ExpiresAt:   req.ExpiresAt,
		Options:     req.Options,
	}

	poll, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, poll)
}

// GetPoll godoc
// @Summary      Returns a poll with its options and total vote count
// @Tags         polls
// @Param        id path string true "Poll ID"
// @Success      200
// @Failure      404
// @Router       /api/polls/{id} [get]
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPollID):
			http.Error(w, "invalid poll id", http.StatusBadRequest)
		case errors.Is(err, domain.ErrPollNotFound):
			http.Error(w, "poll not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

// ListPolls godoc
// @Summary      Lists votable polls
// @Tags         polls
// @Param        limit query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200
// @Router       /api/polls [get]
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListActivePolls(r.Context(), listInput(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, polls)
}

// ListMyPolls godoc
// @Summary      Lists the authenticated user's polls
// @Tags         polls
// @Success      200
// @Failure      401
// @Router       /api/my-polls [get]
func (h *PollHandler) ListMyPolls(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	polls, err := h.service.ListMyPolls(r.Context(), userID, listInput(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, polls)
}

// UpdatePoll godoc
// @Summary      Updates a poll
// @Description  Options, when present, replace the existing set: options whose text is kept retain their id and recorded votes.
// @Tags         polls
// @Accept       json
// @Param        id path string true "Poll ID"
// @Success      200
// @Failure      403
// @Failure      404
// @Router       /api/polls/{id} [put]
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	userID, pollID, ok := h.ownerRequest(w, r)
	if !ok {
		return
	}

	var req updatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.UpdatePollInput{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		ExpiresAt:   req.ExpiresAt,
		Options:     req.Options,
	}

	poll, err := h.service.Update(r.Context(), userID, pollID, input)
	if err != nil {
		h.writeOwnershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

// TogglePoll godoc
// @Summary      Toggles a poll's active flag
// @Tags         polls
// @Param        id path string true "Poll ID"
// @Success      200
// @Failure      403
// @Failure      404
// @Router       /api/polls/{id}/toggle [post]
func (h *PollHandler) TogglePoll(w http.ResponseWriter, r *http.Request) {
	userID, pollID, ok := h.ownerRequest(w, r)
	if !ok {
		return
	}

	poll, err := h.service.ToggleActive(r.Context(), userID, pollID)
	if err != nil {
		h.writeOwnershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

// DeletePoll godoc
// @Summary      Soft-deletes a poll
// @Tags         polls
// @Param        id path string true "Poll ID"
// @Success      204
// @Failure      403
// @Failure      404
// @Router       /api/polls/{id} [delete]
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID, pollID, ok := h.ownerRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, pollID); err != nil {
		h.writeOwnershipError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) ownerRequest(w http.ResponseWriter, r *http.Request) (userID, pollID uuid.UUID, ok bool) {
	userID, authed := userIDFromContext(r)
	if !authed {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, pollID, true
}

func (h *PollHandler) writeOwnershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPollNotFound):
		http.Error(w, "poll not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotPollOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func listInput(r *http.Request) ports.ListPollsInput {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return ports.ListPollsInput{Limit: limit, Offset: offset}
}
