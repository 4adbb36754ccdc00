package rental

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"roombooking/internal/access"
	"roombooking/internal/domain"
)

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type Authorizer interface {
	Authorize(op access.Operation, caller access.Caller, res access.Resource) error
}

// Service keeps utility bills of monthly stays.
type Service struct {
	repo     *Repository
	bookings bookingReader
	authz    Authorizer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo *Repository, bookings bookingReader, authz Authorizer, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		repo:     repo,
		bookings: bookings,
		authz:    authz,
		log:      log.WithField("module", "rental"),
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, caller access.Caller, req CreateRentalRequest) (*domain.MonthlyRental, error) {
	if err := s.authz.Authorize(access.RentalManage, caller, access.Resource{}); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.BookingType != domain.BookingMonthly {
		return nil, ErrNotMonthlyStay
	}
	if b.Status != domain.BookingCheckedIn {
		return nil, ErrBookingNotCheckedIn
	}
	exists, err := s.repo.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRentalExists
	}

	start, err := parseDate(req.BillingPeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.BillingPeriodEnd)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m := &domain.MonthlyRental{
		BookingID:                  b.ID,
		PreviousWaterReading:       req.PreviousWaterReading,
		CurrentWaterReading:        req.CurrentWaterReading,
		WaterUnitPrice:             req.WaterUnitPrice,
		PreviousElectricityReading: req.PreviousElectricityReading,
		CurrentElectricityReading:  req.CurrentElectricityReading,
		ElectricityUnitPrice:       req.ElectricityUnitPrice,
		BillingPeriodStart:         start,
		BillingPeriodEnd:           end,
		PaymentStatus:              domain.PaymentPending,
		Notes:                      strings.TrimSpace(req.Notes),
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	m.Recalculate()
	// счёт из запроса принимается только при создании и только ненулевой
	if req.WaterBill > 0 {
		m.WaterBill = domain.RoundMoney(req.WaterBill)
	}
	if req.ElectricityBill > 0 {
		m.ElectricityBill = domain.RoundMoney(req.ElectricityBill)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"rental_id":  m.ID,
		"booking_id": m.BookingID,
		"total_bill": m.TotalBill(),
	}).Info("monthly rental created")
	return m, nil
}

func (s *Service) Update(ctx context.Context, caller access.Caller, id int64, req UpdateRentalRequest) (*domain.MonthlyRental, error) {
	if err := s.authz.Authorize(access.RentalManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.Mutate(ctx, id, func(m *domain.MonthlyRental) ([]string, error) {
		var err error
		setFloat(&m.PreviousWaterReading, req.PreviousWaterReading)
		setFloat(&m.CurrentWaterReading, req.CurrentWaterReading)
		setFloat(&m.WaterUnitPrice, req.WaterUnitPrice)
		setFloat(&m.PreviousElectricityReading, req.PreviousElectricityReading)
		setFloat(&m.CurrentElectricityReading, req.CurrentElectricityReading)
		setFloat(&m.ElectricityUnitPrice, req.ElectricityUnitPrice)
		if req.BillingPeriodStart != nil {
			if m.BillingPeriodStart, err = parseDate(*req.BillingPeriodStart); err != nil {
				return nil, err
			}
		}
		if req.BillingPeriodEnd != nil {
			if m.BillingPeriodEnd, err = parseDate(*req.BillingPeriodEnd); err != nil {
				return nil, err
			}
		}
		if req.Notes != nil {
			m.Notes = strings.TrimSpace(*req.Notes)
		}
		if err := validate(m); err != nil {
			return nil, err
		}

		m.Recalculate()
		m.UpdatedAt = s.now().UTC()
		return meterColumns, nil
	})
}

// meterColumns are the columns an edit may write; payment state is left to ConfirmPayment.
var meterColumns = []string{
	"previous_water_reading", "current_water_reading", "water_unit_price", "water_bill",
	"previous_electricity_reading", "current_electricity_reading", "electricity_unit_price", "electricity_bill",
	"billing_period_start", "billing_period_end", "notes", "updated_at",
}

func (s *Service) ConfirmPayment(ctx context.Context, caller access.Caller, id int64) (*domain.MonthlyRental, error) {
	if err := s.authz.Authorize(access.RentalManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	m, err := s.repo.Mutate(ctx, id, func(m *domain.MonthlyRental) ([]string, error) {
		if m.PaymentStatus == domain.PaymentPaid {
			return nil, ErrAlreadyPaid
		}
		now := s.now().UTC()
		m.PaymentStatus = domain.PaymentPaid
		m.PaidDate = &now
		m.UpdatedAt = now
		return []string{"payment_status", "paid_date", "updated_at"}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"rental_id": m.ID, "amount": m.TotalBill()}).Info("monthly rental paid")
	return m, nil
}

func (s *Service) Get(ctx context.Context, caller access.Caller, id int64) (*domain.MonthlyRental, error) {
	if err := s.authz.Authorize(access.RentalManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, caller access.Caller, f ListFilter) ([]domain.MonthlyRental, error) {
	if err := s.authz.Authorize(access.RentalManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, f)
}

func validate(m *domain.MonthlyRental) error {
	for _, v := range []float64{
		m.PreviousWaterReading, m.CurrentWaterReading, m.WaterUnitPrice,
		m.PreviousElectricityReading, m.CurrentElectricityReading, m.ElectricityUnitPrice,
	} {
		if v < 0 {
			return ErrNegativeValue
		}
	}
	if !m.BillingPeriodEnd.After(m.BillingPeriodStart) {
		return ErrInvalidBillingPeriod
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
