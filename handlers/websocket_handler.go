package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Доступ ограничен JWT в query string, Origin не проверяем.
		return true
	},
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs поднимает WebSocket-соединение для push-уведомлений текущего
// пользователя. Токен передаётся через query string, заголовки браузерный
// WebSocket выставлять не умеет.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		slog.Error("websocket upgrade failed",
			slog.String("user_id", currentUserID),
			slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, currentUserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
