package room

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"roombooking/internal/domain"
	"roombooking/internal/middleware"
	"roombooking/internal/pkg/response"
)

const (
	dateLayout       = "2006-01-02"
	defaultBusyRange = 90 * 24 * time.Hour
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/rooms")
	{
		rooms.GET("", h.List)
		rooms.GET("/:id", h.Get)
		rooms.GET("/:id/busy", h.BusyRanges)
	}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/rooms")
	{
		rooms.POST("", h.Create)
		rooms.PUT("/:id", h.Update)
		rooms.DELETE("/:id", h.Retire)
	}
}

// List handles GET /rooms with filters
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		RoomType: c.Query("room_type"),
		Status:   domain.RoomStatus(c.Query("status")),
		Limit:    defaultPageSize,
	}
	if v, err := strconv.Atoi(c.Query("min_capacity")); err == nil {
		f.MinCapacity = v
	}
	if v, err := strconv.ParseFloat(c.Query("max_daily_rate"), 64); err == nil {
		f.MaxDailyRate = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= maxPageSize {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		f.Offset = (v - 1) * f.Limit
	}

	rooms, total, err := h.service.ListActive(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"rooms": rooms,
		"pagination": gin.H{
			"page":        f.Offset/f.Limit + 1,
			"limit":       f.Limit,
			"total":       total,
			"total_pages": (int(total) + f.Limit - 1) / f.Limit,
		},
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	room, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// BusyRanges handles GET /rooms/:id/busy?from=&to= for the booking calendar.
func (h *Handler) BusyRanges(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}

	from := domain.DateOnly(time.Now())
	to := from.Add(defaultBusyRange)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
			return
		}
		to = t
	}

	ranges, err := h.service.BusyRanges(c.Request.Context(), id, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room_id": id, "busy": ranges})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	room, err := h.service.Create(c.Request.Context(), middleware.CurrentCaller(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	room, err := h.service.Update(c.Request.Context(), middleware.CurrentCaller(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// Retire handles DELETE /admin/rooms/:id. Rooms are never removed physically.
func (h *Handler) Retire(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	if err := h.service.Retire(c.Request.Context(), middleware.CurrentCaller(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Room retired"})
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return 0, false
	}
	return id, true
}
