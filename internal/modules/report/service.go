package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"roombooking/internal/access"
	"roombooking/internal/domain"
)

var (
	ErrInvalidRange = domain.Invalid("report end date must not be before its start date")
	ErrInvalidMonth = domain.Invalid("month must be between 1 and 12")
)

// Renderer turns computed report data into a document. It holds no business logic.
type Renderer interface {
	RenderBookings(r *BookingReport) ([]byte, error)
	RenderMonthly(r *MonthlyReport) ([]byte, error)
	RenderUtilities(r *UtilitiesReport) ([]byte, error)
}

type Authorizer interface {
	Authorize(op access.Operation, caller access.Caller, res access.Resource) error
}

type Service struct {
	repo     *Repository
	renderer Renderer
	authz    Authorizer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo *Repository, renderer Renderer, authz Authorizer, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		repo:     repo,
		renderer: renderer,
		authz:    authz,
		log:      log.WithField("module", "report"),
		now:      time.Now,
	}
}

// Bookings builds the report of bookings created between from and to, both days inclusive.
func (s *Service) Bookings(ctx context.Context, caller access.Caller, from, to time.Time) (*BookingReport, error) {
	if err := s.authz.Authorize(access.ReportView, caller, access.Resource{}); err != nil {
		return nil, err
	}
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	bookings, err := s.repo.BookingsCreated(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	r := &BookingReport{From: from, To: to, Rows: make([]BookingRow, 0, len(bookings))}
	for _, b := range bookings {
		row := BookingRow{
			ID:       b.ID,
			RoomName: "N/A",
			CheckIn:  b.CheckInDate,
			CheckOut: b.CheckOutDate,
			Status:   b.Status,
			Amount:   b.FinalAmount,
		}
		if b.Room != nil {
			row.RoomName = b.Room.Name
		}
		if b.User != nil {
			row.GuestName = b.User.FullName()
		}
		r.Rows = append(r.Rows, row)
		r.Total += b.FinalAmount
	}
	r.Total = domain.RoundMoney(r.Total)
	return r, nil
}

func (s *Service) Monthly(ctx context.Context, caller access.Caller, year int, month time.Month) (*MonthlyReport, error) {
	if err := s.authz.Authorize(access.ReportView, caller, access.Resource{}); err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := start.AddDate(0, 1, 0)

	bookings, err := s.repo.BookingsCreated(ctx, start, next)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.PaidRevenue(ctx, start, next)
	if err != nil {
		return nil, err
	}

	r := &MonthlyReport{
		Month:         start,
		From:          start,
		To:            next.AddDate(0, 0, -1),
		TotalBookings: len(bookings),
		Revenue:       domain.RoundMoney(revenue),
	}
	if len(bookings) > 0 {
		r.AverageValue = domain.RoundMoney(revenue / float64(len(bookings)))
	}

	counts := make(map[domain.BookingStatus]int)
	for _, b := range bookings {
		counts[b.Status]++
	}
	for _, st := range statusOrder {
		if n := counts[st]; n > 0 {
			r.ByStatus = append(r.ByStatus, StatusCount{Status: st, Count: n})
		}
	}
	return r, nil
}

// Utilities builds the utility report of rentals whose billing period starts between from and to.
func (s *Service) Utilities(ctx context.Context, caller access.Caller, from, to time.Time) (*UtilitiesReport, error) {
	if err := s.authz.Authorize(access.ReportView, caller, access.Resource{}); err != nil {
		return nil, err
	}
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	rentals, err := s.repo.RentalsStarting(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	r := &UtilitiesReport{From: from, To: to, Rows: make([]UtilityRow, 0, len(rentals))}
	for i := range rentals {
		m := &rentals[i]
		row := UtilityRow{
			RoomName:         "N/A",
			PeriodStart:      m.BillingPeriodStart,
			PeriodEnd:        m.BillingPeriodEnd,
			WaterUsage:       m.WaterUsage(),
			ElectricityUsage: m.ElectricityUsage(),
			WaterBill:        m.WaterBill,
			ElectricityBill:  m.ElectricityBill,
			PaymentStatus:    m.PaymentStatus,
		}
		if m.Booking != nil {
			if m.Booking.Room != nil {
				row.RoomName = m.Booking.Room.Name
			}
			if m.Booking.User != nil {
				row.TenantName = m.Booking.User.FullName()
			}
		}
		r.Rows = append(r.Rows, row)
		r.TotalWater += m.WaterBill
		r.TotalElectricity += m.ElectricityBill
	}
	r.TotalWater = domain.RoundMoney(r.TotalWater)
	r.TotalElectricity = domain.RoundMoney(r.TotalElectricity)
	return r, nil
}

func (s *Service) BookingsPDF(ctx context.Context, caller access.Caller, from, to time.Time) ([]byte, error) {
	r, err := s.Bookings(ctx, caller, from, to)
	if err != nil {
		return nil, err
	}
	return s.render("bookings", func() ([]byte, error) { return s.renderer.RenderBookings(r) })
}

func (s *Service) MonthlyPDF(ctx context.Context, caller access.Caller, year int, month time.Month) ([]byte, error) {
	r, err := s.Monthly(ctx, caller, year, month)
	if err != nil {
		return nil, err
	}
	return s.render("monthly", func() ([]byte, error) { return s.renderer.RenderMonthly(r) })
}

func (s *Service) UtilitiesPDF(ctx context.Context, caller access.Caller, from, to time.Time) ([]byte, error) {
	r, err := s.Utilities(ctx, caller, from, to)
	if err != nil {
		return nil, err
	}
	return s.render("utilities", func() ([]byte, error) { return s.renderer.RenderUtilities(r) })
}

func (s *Service) render(kind string, fn func() ([]byte, error)) ([]byte, error) {
	start := time.Now()
	out, err := fn()
	if err != nil {
		s.log.WithError(err).WithField("report", kind).Error("render report")
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"report":   kind,
		"bytes":    len(out),
		"duration": time.Since(start).String(),
	}).Info("report rendered")
	return out, nil
}

func (s *Service) Dashboard(ctx context.Context, caller access.Caller) (*Dashboard, error) {
	if err := s.authz.Authorize(access.ReportView, caller, access.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.Dashboard(ctx, domain.DateOnly(s.now()))
}
