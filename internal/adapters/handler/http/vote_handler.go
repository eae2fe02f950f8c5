package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// CastVote godoc
// @Summary      Casts a vote on a poll
// @Description  Records one vote per identity per poll. Authenticated voters are identified by user id, anonymous voters by IP address.
// @Tags         votes
// @Accept       json
// @Param        id path string true "Poll ID"
// @Success      201
// @Failure      404
// @Failure      409
// @Failure      422
// @Router       /api/polls/{id}/votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.OptionID == uuid.Nil {
		writeFieldError(w, http.StatusUnprocessableEntity, "option_id", "The option id field is required.")
		return
	}

	input := ports.CastVoteInput{
		PollID:    pollID,
		OptionID:  req.OptionID,
		Identity:  requesterIdentity(r),
		UserAgent: r.UserAgent(),
	}

	result, err := h.service.Cast(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPollNotFound):
			http.Error(w, "poll not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrPollNotVotable):
			writeFieldError(w, http.StatusUnprocessableEntity, "vote", "This poll is not active or has expired.")
		case errors.Is(err, domain.ErrInvalidOption):
			writeFieldError(w, http.StatusUnprocessableEntity, "option_id", "The selected option is invalid.")
		case errors.Is(err, domain.ErrAlreadyVoted):
			writeFieldError(w, http.StatusConflict, "vote", "You have already voted in this poll.")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GetMyVote godoc
// @Summary      Returns the requester's vote on a poll
// @Tags         votes
// @Param        id path string true "Poll ID"
// @Success      200
// @Failure      404
// @Router       /api/polls/{id}/my-vote [get]
func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	vote, err := h.service.FindMyVote(r.Context(), pollID, requesterIdentity(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVoteNotFound):
			http.Error(w, "vote not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrPollNotFound):
			http.Error(w, "poll not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"option_id": vote.OptionID.String()})
}

// GetResults godoc
// @Summary      Returns the poll's current statistics
// @Description  Recomputed from the vote ledger on every call.
// @Tags         votes
// @Param        id path string true "Poll ID"
// @Success      200
// @Failure      404
// @Router       /api/polls/{id}/results [get]
func (h *VoteHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	statistics, err := h.service.Statistics(r.Context(), pollID)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, statistics)
}

// requesterIdentity derives the voter identity: the authenticated user
// when present, otherwise the caller IP (RealIP middleware has already
// resolved proxy headers into RemoteAddr).
func requesterIdentity(r *http.Request) domain.Identity {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	identity := domain.Identity{IPAddress: ip}
	if userID, ok := userIDFromContext(r); ok {
		identity.UserID = &userID
	}
	return identity
}
