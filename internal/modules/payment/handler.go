package payment

import (
	"context"
	"net/http"
	"strconv"

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

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/payment-methods", h.ListMethods)
}

// RegisterRoutes mounts customer routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/payments", h.Submit)
	rg.GET("/bookings/:id/payments", h.ListForBooking)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.List)
		payments.POST("/:id/confirm", h.Confirm)
		payments.POST("/:id/reject", h.Reject)
		payments.POST("/:id/refund", h.Refund)
	}

	methods := rg.Group("/payment-methods")
	{
		methods.GET("", h.ListAllMethods)
		methods.POST("", h.CreateMethod)
		methods.PUT("/:id", h.UpdateMethod)
		methods.DELETE("/:id", h.RetireMethod)
	}
}

func (h *Handler) ListMethods(c *gin.Context) {
	methods, err := h.service.ListMethods(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_methods": methods})
}

func (h *Handler) Submit(c *gin.Context) {
	bookingID, ok := pathID(c, "Invalid booking ID")
	if !ok {
		return
	}
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Submit(c.Request.Context(), middleware.CurrentCaller(c), bookingID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) ListForBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "Invalid booking ID")
	if !ok {
		return
	}
	rows, err := h.service.ListForBooking(c.Request.Context(), middleware.CurrentCaller(c), bookingID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": rows})
}

func (h *Handler) List(c *gin.Context) {
	f := ListFilter{Status: domain.PaymentStatus(c.Query("status"))}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	rows, err := h.service.List(c.Request.Context(), middleware.CurrentCaller(c), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": rows})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "Invalid payment ID")
	if !ok {
		return
	}
	p, err := h.service.Confirm(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) Reject(c *gin.Context) {
	h.withNotes(c, h.service.Reject)
}

func (h *Handler) Refund(c *gin.Context) {
	h.withNotes(c, h.service.Refund)
}

type reviewWithNotes func(ctx context.Context, caller access.Caller, id int64, notes string) (*domain.Payment, error)

func (h *Handler) withNotes(c *gin.Context, op reviewWithNotes) {
	id, ok := pathID(c, "Invalid payment ID")
	if !ok {
		return
	}
	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}
	p, err := op(c.Request.Context(), middleware.CurrentCaller(c), id, req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) ListAllMethods(c *gin.Context) {
	methods, err := h.service.ListAllMethods(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_methods": methods})
}

func (h *Handler) CreateMethod(c *gin.Context) {
	var req CreateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	m, err := h.service.CreateMethod(c.Request.Context(), middleware.CurrentCaller(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment_method": m})
}

func (h *Handler) UpdateMethod(c *gin.Context) {
	id, ok := pathID(c, "Invalid payment method ID")
	if !ok {
		return
	}
	var req UpdateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	m, err := h.service.UpdateMethod(c.Request.Context(), middleware.CurrentCaller(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_method": m})
}

// RetireMethod handles DELETE /admin/payment-methods/:id. The row stays for
// the payments that reference it.
func (h *Handler) RetireMethod(c *gin.Context) {
	id, ok := pathID(c, "Invalid payment method ID")
	if !ok {
		return
	}
	if err := h.service.RetireMethod(c.Request.Context(), middleware.CurrentCaller(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Payment method retired"})
}

func pathID(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", message)
		return 0, false
	}
	return id, true
}
