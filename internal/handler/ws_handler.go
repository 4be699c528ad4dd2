package handler

import (
	"net/http"

	appmw "deliverytrack/internal/middleware"
	"deliverytrack/internal/model"
	"deliverytrack/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type WSHandler struct {
	hub      *realtime.Hub
	auth     *appmw.AuthMiddleware
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, auth *appmw.AuthMiddleware) *WSHandler {
	return &WSHandler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the bearer token in the query string is the access control
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and subscribes it. An absent or invalid
// token is tolerated: the socket stays open but joins no channels, matching
// the contract that unauthenticated listeners simply hear nothing.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	client := realtime.NewClient(conn)

	if raw := c.QueryParam("token"); raw != "" {
		if u, err := h.auth.ResolveUser(c.Request().Context(), raw); err == nil {
			channels := []string{realtime.UserChannel(u.ID)}
			switch u.Role {
			case model.RoleAdmin:
				channels = append(channels, realtime.AdminRoom)
			case model.RoleSeller:
				channels = append(channels, realtime.SellerRoom)
			}
			h.hub.Subscribe(client, channels...)
		}
	}

	go client.WritePump()
	go client.ReadPump(func() { h.hub.Unsubscribe(client) })
	return nil
}
