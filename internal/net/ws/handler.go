package ws

import (
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"outbreak/server"
	"outbreak/server/internal/net/intake"
	"outbreak/server/internal/net/proto"
	"outbreak/server/internal/telemetry"
)

type HandlerConfig struct {
	Logger telemetry.Logger
}

type Handler struct {
	hub      *server.Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   telemetry.Default(cfg.Logger),
		upgrader: upgrader,
	}
}

// Handle upgrades the request, subscribes the connection to hub updates and
// applies inbound commands until the client goes away.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	id := h.hub.Subscribe(conn)
	defer h.hub.Unsubscribe(id)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		cmd, err := intake.StageClientCommand(h.hub, payload)
		if err != nil {
			h.logger.Printf("discarding command %q from subscriber %d: %v", cmd.Type, id, err)
			h.hub.Send(id, proto.NewErrorMessage(err))
		}
	}
}
