package report

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"roombooking/internal/middleware"
	"roombooking/internal/pkg/response"
)

const pdfContentType = "application/pdf"

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/bookings", h.Bookings)
		reports.GET("/monthly", h.Monthly)
		reports.GET("/utilities", h.Utilities)
	}
	rg.GET("/dashboard", h.Dashboard)
}

// Bookings handles GET /admin/reports/bookings?from=&to= (defaults to the current month).
func (h *Handler) Bookings(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	out, err := h.service.BookingsPDF(c.Request.Context(), middleware.CurrentCaller(c), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendPDF(c, fmt.Sprintf("BookingReport_%s.pdf", h.now().Format("20060102")), out)
}

func (h *Handler) Monthly(c *gin.Context) {
	now := h.now()
	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_YEAR", "year must be a number")
			return
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_MONTH", "month must be a number")
			return
		}
		month = m
	}

	out, err := h.service.MonthlyPDF(c.Request.Context(), middleware.CurrentCaller(c), year, time.Month(month))
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendPDF(c, fmt.Sprintf("MonthlyReport_%d_%02d.pdf", year, month), out)
}

func (h *Handler) Utilities(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	out, err := h.service.UtilitiesPDF(c.Request.Context(), middleware.CurrentCaller(c), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendPDF(c, fmt.Sprintf("UtilitiesReport_%s.pdf", h.now().Format("20060102")), out)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dashboard": d})
}

func (h *Handler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := h.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	return from, to, true
}

func sendPDF(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, pdfContentType, body)
}
