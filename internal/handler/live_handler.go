package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"livepoll/internal/live"
	"livepoll/internal/service"
	"livepoll/pkg/logger"
)

// LiveHandler upgrades viewer connections and parks them on the hub until
// they disconnect.
type LiveHandler struct {
	hub         *live.Hub
	pollService *service.PollService
	logger      *logger.Logger
	upgrader    websocket.Upgrader
}

func NewLiveHandler(hub *live.Hub, pollService *service.PollService, logger *logger.Logger) *LiveHandler {
	return &LiveHandler{
		hub:         hub,
		pollService: pollService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin viewers are expected; CORS is enforced on the
			// HTTP API, not the socket.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe handles GET /ws/{slug}
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if _, err := h.pollService.GetPoll(r.Context(), slug); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		h.logger.WithError(err).WithField("slug", slug).Warn("WebSocket upgrade failed")
		return
	}

	client := live.NewClient(conn)
	h.hub.Subscribe(slug, client)
	h.logger.WithFields(map[string]interface{}{
		"slug":      slug,
		"client_id": client.ID(),
	}).Debug("Viewer subscribed")

	defer func() {
		h.hub.Unsubscribe(slug, client)
		client.Close()
		h.logger.WithFields(map[string]interface{}{
			"slug":      slug,
			"client_id": client.ID(),
		}).Debug("Viewer disconnected")
	}()

	client.ReadLoop()
}
