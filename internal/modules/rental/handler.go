package rental

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

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

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rentals := rg.Group("/rentals")
	{
		rentals.GET("", h.List)
		rentals.POST("", h.Create)
		rentals.GET("/:id", h.Get)
		rentals.PUT("/:id", h.Update)
		rentals.POST("/:id/confirm-payment", h.ConfirmPayment)
	}
}

func (h *Handler) List(c *gin.Context) {
	f := ListFilter{PaymentStatus: domain.PaymentStatus(c.Query("payment_status"))}
	if v := c.Query("booking_id"); v != "" {
		f.BookingID, _ = strconv.ParseInt(v, 10, 64)
	}
	rows, err := h.service.List(c.Request.Context(), middleware.CurrentCaller(c), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rentals": rows})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	m, err := h.service.Create(c.Request.Context(), middleware.CurrentCaller(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"rental": m, "total_bill": m.TotalBill()})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := rentalID(c)
	if !ok {
		return
	}
	m, err := h.service.Get(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": m, "total_bill": m.TotalBill()})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := rentalID(c)
	if !ok {
		return
	}
	var req UpdateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	m, err := h.service.Update(c.Request.Context(), middleware.CurrentCaller(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": m, "total_bill": m.TotalBill()})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := rentalID(c)
	if !ok {
		return
	}
	m, err := h.service.ConfirmPayment(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": m})
}

func rentalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rental ID")
		return 0, false
	}
	return id, true
}
