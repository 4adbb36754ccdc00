package feed

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"roombooking/internal/access"
	"roombooking/internal/domain"
	"roombooking/internal/pkg/jwt"
	"roombooking/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// доступ ограничен токеном, origin не проверяем
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Authorizer interface {
	Authorize(op access.Operation, caller access.Caller, res access.Resource) error
}

type Handler struct {
	hub    *Hub
	tokens *jwt.Service
	authz  Authorizer
}

func NewHandler(hub *Hub, tokens *jwt.Service, authz Authorizer) *Handler {
	return &Handler{hub: hub, tokens: tokens, authz: authz}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/bookings", h.Watch)
}

// Watch streams booking events to staff.
//
// Endpoint: GET /ws/bookings?token=JWT_TOKEN
// Browsers cannot set headers on a websocket handshake, so the token comes in the query.
func (h *Handler) Watch(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required")
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	caller := access.NewCaller(claims.UserID, domain.UserRole(claims.Role))
	if err := h.authz.Authorize(access.FeedWatch, caller, access.Resource{}); err != nil {
		if errors.Is(err, access.ErrForbidden) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Staff access required")
			return
		}
		response.FromError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	cl := h.hub.register(caller.ID)
	h.hub.log.WithField("user_id", caller.ID).Info("feed client connected")

	go h.writePump(conn, cl)
	h.readPump(conn, cl)
}

// readPump only services control frames; clients never send data.
func (h *Handler) readPump(conn *websocket.Conn, cl *client) {
	defer func() {
		h.hub.unregister(cl)
		_ = conn.Close()
		h.hub.log.WithField("user_id", cl.userID).Info("feed client disconnected")
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.hub.log.WithError(err).WithField("user_id", cl.userID).Warn("feed read error")
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
