package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/access"
	"roombooking/internal/domain"
	"roombooking/internal/logger"
	"roombooking/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newFeedServer(t *testing.T) (*Hub, *jwt.Service, *httptest.Server) {
	t.Helper()
	authz, err := access.NewAuthorizer()
	require.NoError(t, err)

	hub := NewHub(logger.Discard())
	tokens := jwt.New("feed-secret", time.Hour)
	r := gin.New()
	NewHandler(hub, tokens, authz).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, tokens, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/bookings?token=" + token
}

func TestWatch_StaffReceivesEvents(t *testing.T) {
	hub, tokens, srv := newFeedServer(t)

	token, err := tokens.GenerateToken(5, string(domain.RoleStaff))
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.GetOnlineCount() == 1 }, time.Second, 10*time.Millisecond)

	b := &domain.Booking{ID: 9, RoomID: 2, UserID: 3, Status: domain.BookingConfirmed}
	hub.PublishBookingEvent(context.Background(), domain.NewBookingEvent(domain.EventBookingConfirmed, b, time.Now()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.BookingEvent
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, domain.EventBookingConfirmed, got.Type)
	assert.Equal(t, int64(9), got.BookingID)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
}

func TestWatch_Rejections(t *testing.T) {
	_, tokens, srv := newFeedServer(t)

	customer, err := tokens.GenerateToken(3, string(domain.RoleCustomer))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "garbage", http.StatusUnauthorized},
		{"customer", customer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(logger.Discard())
	c := hub.register(1)

	ev := domain.BookingEvent{Type: domain.EventBookingCreated, BookingID: 1}
	for i := 0; i < sendBuffer; i++ {
		hub.PublishBookingEvent(context.Background(), ev)
	}
	assert.Equal(t, 1, hub.GetOnlineCount())

	hub.PublishBookingEvent(context.Background(), ev)
	assert.Equal(t, 0, hub.GetOnlineCount())

	// buffered messages drain, then the channel reports closed
	n := 0
	for range c.send {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	assert.NotPanics(t, func() {
		hub.PublishBookingEvent(context.Background(), domain.BookingEvent{Type: domain.EventBookingCreated})
	})
}
