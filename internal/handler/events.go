package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"belongings/internal/domain/models/inventory"
	"belongings/internal/handler/sse"
	"belongings/internal/httputil"
)

// EventSubscriber is the subscribe side of the event hub.
type EventSubscriber interface {
	Subscribe(userID string) (<-chan inventory.Event, func())
}

// EventsHandler streams a user's change events over Server-Sent Events
type EventsHandler struct {
	hub    EventSubscriber
	config *sse.Config
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler. A nil config uses sse.DefaultConfig.
func NewEventsHandler(hub EventSubscriber, config *sse.Config, logger *slog.Logger) *EventsHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &EventsHandler{
		hub:    hub,
		config: config,
		logger: logger,
	}
}

// Stream sends folder-updated and item-updated events until the client leaves
// GET /api/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// subscribe before writing headers so no event published after the
	// client sees 200 is missed
	events, cancel := h.hub.Subscribe(userID)
	defer cancel()

	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	if err := writer.WriteRetry(h.config.RetryInterval); err != nil {
		return
	}

	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	keepAliveFailed := sse.KeepAlive(ctx, writer, h.config.KeepAliveInterval)

	h.logger.Debug("event stream opened", "user_id", userID)
	defer h.logger.Debug("event stream closed", "user_id", userID)

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-keepAliveFailed:
			h.logger.Debug("keep-alive failed, closing stream", "user_id", userID, "error", err)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode event", "error", err, "type", event.Type)
				continue
			}
			seq++
			if err := writer.WriteEvent(strconv.FormatUint(seq, 10), event.Type, data); err != nil {
				h.logger.Debug("client disconnected", "user_id", userID, "error", err)
				return
			}
		}
	}
}
