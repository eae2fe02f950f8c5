package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/livepoll/api/internal/adapters/broadcast"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

// StreamHandler serves the server-sent-event streams: live poll results
// on the public poll channel and creator notifications on the private
// user channel.
type StreamHandler struct {
	votes ports.VoteService
	hub   *broadcast.Hub
}

func NewStreamHandler(votes ports.VoteService, hub *broadcast.Hub) *StreamHandler {
	return &StreamHandler{
		votes: votes,
		hub:   hub,
	}
}

// PollLive godoc
// @Summary      Streams live poll statistics
// @Description  Server-sent events: an initial "statistics" snapshot followed by a "vote.cast" event per committed vote.
// @Tags         votes
// @Produce      text/event-stream
// @Param        id path string true "Poll ID"
// @Success      200
// @Failure      404
// @Router       /api/polls/{id}/live [get]
func (h *StreamHandler) PollLive(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	// Current snapshot first, so a late subscriber is not blank until
	// the next vote.
	statistics, err := h.votes.Statistics(r.Context(), pollID)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, stop := h.hub.Subscribe(ports.PollChannel(pollID))
	defer stop()

	writeStreamHeaders(w)
	writeStreamEvent(w, "statistics", statistics)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeStreamEvent(w, ev.Name, ev.Payload)
			flusher.Flush()
		}
	}
}

// Notifications godoc
// @Summary      Streams the authenticated user's notifications
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200
// @Failure      401
// @Router       /api/notifications/stream [get]
func (h *StreamHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, stop := h.hub.Subscribe(ports.UserChannel(userID))
	defer stop()

	writeStreamHeaders(w)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeStreamEvent(w, ev.Name, ev.Payload)
			flusher.Flush()
		}
	}
}

func writeStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

func writeStreamEvent(w http.ResponseWriter, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}
