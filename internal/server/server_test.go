package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/domain"
	"roombooking/internal/logger"
)

type testResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type suite struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.RunMigrations(db, "../../migrations", nil))

	cfg := &config.Config{
		App:    config.AppConfig{Name: "roombooking", Env: "test"},
		Server: config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}},
		JWT:    config.JWTConfig{Secret: "e2e-secret", TTL: time.Hour},
	}
	app, err := New(cfg, db, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return &suite{t: t, router: app.Router, db: db}
}

func (s *suite) do(method, path, token string, body any) (int, testResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp testResponse
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func (s *suite) login(email, password string) string {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, code, resp.Error)
	return resp.Data["access_token"].(string)
}

func (s *suite) createUser(email, password string, role domain.UserRole) {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(&domain.User{
		Email: email, PasswordHash: string(hash), FirstName: "Desk", Role: role, IsActive: true,
	}).Error)
}

func id(v interface{}) int64 {
	return int64(v.(map[string]interface{})["id"].(float64))
}

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestHealth(t *testing.T) {
	s := setupSuite(t)
	code, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBookingFlow(t *testing.T) {
	s := setupSuite(t)
	s.createUser("desk@example.com", "deskpass1", domain.RoleStaff)

	// регистрация клиента
	code, resp := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "guest@example.com", "password": "guestpass", "first_name": "Guest",
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)

	code, resp = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "GUEST@example.com", "password": "guestpass", "first_name": "Again",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)

	admin := s.login("admin@roombooking.com", "Admin@123")
	staff := s.login("desk@example.com", "deskpass1")
	guest := s.login("guest@example.com", "guestpass")

	code, resp = s.do(http.MethodGet, "/api/v1/auth/me", guest, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "customer", resp.Data["user"].(map[string]interface{})["role"])

	// номера создаёт только admin
	roomBody := gin.H{"room_number": "201", "name": "Twin", "capacity": 2, "daily_rate": 80, "monthly_rate": 1500}
	code, _ = s.do(http.MethodPost, "/api/v1/admin/rooms", staff, roomBody)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/api/v1/admin/rooms", guest, roomBody)
	assert.Equal(t, http.StatusForbidden, code)
	code, resp = s.do(http.MethodPost, "/api/v1/admin/rooms", admin, roomBody)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	roomID := id(resp.Data["room"])

	code, resp = s.do(http.MethodGet, "/api/v1/rooms", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data["rooms"], 1)

	// бронирование без токена
	bookingBody := gin.H{
		"room_id": roomID, "booking_type": "daily",
		"check_in_date": day(10), "check_out_date": day(12), "number_of_guests": 2,
	}
	code, _ = s.do(http.MethodPost, "/api/v1/bookings", "", bookingBody)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp = s.do(http.MethodPost, "/api/v1/bookings", guest, bookingBody)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	b := resp.Data["booking"].(map[string]interface{})
	bookingID := id(b)
	assert.Equal(t, "pending", b["status"])
	assert.Equal(t, 160.0, b["final_amount"])

	// пересечение дат
	overlap := gin.H{
		"room_id": roomID, "booking_type": "daily",
		"check_in_date": day(11), "check_out_date": day(13), "number_of_guests": 1,
	}
	code, resp = s.do(http.MethodPost, "/api/v1/bookings", staff, overlap)
	assert.Equal(t, http.StatusConflict, code, resp.Error)

	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/busy", roomID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data["busy"], 1)

	// клиент не может подтверждать
	confirmPath := fmt.Sprintf("/api/v1/admin/bookings/%d/confirm", bookingID)
	code, _ = s.do(http.MethodPost, confirmPath, guest, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(http.MethodPost, confirmPath, staff, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "confirmed", resp.Data["booking"].(map[string]interface{})["status"])

	// оплата
	var cash domain.PaymentMethod
	require.NoError(t, s.db.Where("type = ?", domain.MethodCash).First(&cash).Error)
	code, resp = s.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/payments", bookingID), guest, gin.H{"payment_method_id": cash.ID})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	paymentID := id(resp.Data["payment"])

	code, resp = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/payments/%d/confirm", paymentID), staff, gin.H{})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "paid", resp.Data["payment"].(map[string]interface{})["status"])

	code, resp = s.do(http.MethodGet, "/api/v1/admin/dashboard", staff, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)

	// чужая бронь не видна
	s.createUser("other@example.com", "otherpass", domain.RoleCustomer)
	other := s.login("other@example.com", "otherpass")
	code, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), other, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = s.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID), guest, gin.H{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "cancelled", resp.Data["booking"].(map[string]interface{})["status"])
}

func TestReportPDF(t *testing.T) {
	s := setupSuite(t)
	admin := s.login("admin@roombooking.com", "Admin@123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports/bookings?from=2025-01-01&to=2025-01-31", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestAdminPaymentMethods(t *testing.T) {
	s := setupSuite(t)
	s.createUser("desk@example.com", "deskpass1", domain.RoleStaff)
	admin := s.login("admin@roombooking.com", "Admin@123")
	staff := s.login("desk@example.com", "deskpass1")

	body := gin.H{"name": "Kaspi QR", "type": "qr_code", "display_order": 9}
	code, _ := s.do(http.MethodPost, "/api/v1/admin/payment-methods", staff, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(http.MethodPost, "/api/v1/admin/payment-methods", admin, body)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	methodID := id(resp.Data["payment_method"])

	code, resp = s.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/payment-methods/%d", methodID), admin, gin.H{"bank_name": "Kaspi"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "Kaspi", resp.Data["payment_method"].(map[string]interface{})["bank_name"])

	code, resp = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/payment-methods/%d", methodID), admin, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)

	code, resp = s.do(http.MethodGet, "/api/v1/payment-methods", "", nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	for _, m := range resp.Data["payment_methods"].([]interface{}) {
		assert.NotEqual(t, methodID, id(m))
	}

	code, resp = s.do(http.MethodGet, "/api/v1/admin/payment-methods", admin, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	var found bool
	for _, m := range resp.Data["payment_methods"].([]interface{}) {
		if id(m) == methodID {
			found = true
			assert.Equal(t, false, m.(map[string]interface{})["is_active"])
		}
	}
	assert.True(t, found)
}

func TestAdminBookingListRejectsMalformedFilters(t *testing.T) {
	s := setupSuite(t)
	admin := s.login("admin@roombooking.com", "Admin@123")

	for _, query := range []string{"room_id=abc", "room_id=-3", "from=2025-13-01", "to=tomorrow"} {
		code, resp := s.do(http.MethodGet, "/api/v1/admin/bookings?"+query, admin, nil)
		assert.Equal(t, http.StatusBadRequest, code, query)
		if assert.NotNil(t, resp.Error, query) {
			assert.Equal(t, "INVALID_FILTER", resp.Error.Code, query)
		}
	}

	code, resp := s.do(http.MethodGet, "/api/v1/admin/bookings?room_id=1&from=2025-01-01&to=2025-02-01", admin, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
}
