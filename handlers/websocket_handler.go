package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/robostage/backend/live"
	"github.com/robostage/backend/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to the dashboard's domain once it is deployed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub          *live.Hub
	stageService services.StageService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, stageService services.StageService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, stageService: stageService, logger: logger}
}

// ServeStage subscribes a dashboard client to live updates for one stage.
// Clients connect to /ws/stages/{stageID}.
func (h *WebSocketHandler) ServeStage(w http.ResponseWriter, r *http.Request) {
	stageID := chi.URLParam(r, "stageID")
	if stageID == "" {
		badRequestResponse(w, r, errors.New("missing stage id"))
		return
	}

	if _, err := h.stageService.GetStage(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("failed to upgrade websocket connection",
			slog.String("stage_id", stageID), slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, stageID)
	client.Start()
}
