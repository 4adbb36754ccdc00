package booking

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"roombooking/internal/access"
	"roombooking/internal/domain"
	"roombooking/internal/middleware"
	"roombooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts customer routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/mine", h.ListMine)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/postpone", h.RequestPostpone)
		bookings.POST("/:id/cancel", h.Cancel)
	}
}

// RegisterAdminRoutes mounts front-desk routes on a staff-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("", h.List)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/confirm", h.Confirm)
		bookings.POST("/:id/check-in", h.CheckIn)
		bookings.POST("/:id/check-out", h.CheckOut)
		bookings.POST("/:id/approve-postpone", h.ApprovePostpone)
		bookings.POST("/:id/reject-postpone", h.RejectPostpone)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/discount", h.AdjustDiscount)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), middleware.CurrentCaller(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	rows, err := h.service.ListMine(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		Status: domain.BookingStatus(c.Query("status")),
	}
	if v := c.Query("room_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_FILTER", "room_id must be a positive integer")
			return
		}
		filter.RoomID = id
	}
	var ok bool
	if filter.From, ok = dateQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = dateQuery(c, "to"); !ok {
		return
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := h.service.List(c.Request.Context(), middleware.CurrentCaller(c), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) Confirm(c *gin.Context)         { h.simple(c, h.service.Confirm) }
func (h *Handler) CheckIn(c *gin.Context)         { h.simple(c, h.service.CheckIn) }
func (h *Handler) CheckOut(c *gin.Context)        { h.simple(c, h.service.CheckOut) }
func (h *Handler) ApprovePostpone(c *gin.Context) { h.simple(c, h.service.ApprovePostpone) }
func (h *Handler) RejectPostpone(c *gin.Context)  { h.simple(c, h.service.RejectPostpone) }

func (h *Handler) RequestPostpone(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req PostponeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	newIn, newOut, err := parseDates(req.NewCheckInDate, req.NewCheckOutDate)
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.RequestPostpone(c.Request.Context(), middleware.CurrentCaller(c), id, newIn, newOut, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelRequest
	// тело необязательно
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	b, err := h.service.Cancel(c.Request.Context(), middleware.CurrentCaller(c), id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AdjustDiscount(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.AdjustDiscount(c.Request.Context(), middleware.CurrentCaller(c), id, *req.DiscountAmount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

type simpleTransition func(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error)

func (h *Handler) simple(c *gin.Context, op simpleTransition) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := op(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

// dateQuery reads an optional YYYY-MM-DD query parameter; a malformed value
// answers 400 instead of widening the listing.
func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILTER", name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
