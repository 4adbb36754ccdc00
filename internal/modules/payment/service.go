package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"roombooking/internal/access"
	"roombooking/internal/domain"
	"roombooking/internal/pkg/validator"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service handles payments customers report for their bookings and the
// staff review of those payments.
type Service struct {
	payments paymentRepo
	bookings bookingReader
	authz    Authorizer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(payments paymentRepo, bookings bookingReader, authz Authorizer, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		authz:    authz,
		log:      log.WithField("module", "payment"),
		now:      time.Now,
	}
}

// Submit records a pending payment for the full final amount of the booking.
func (s *Service) Submit(ctx context.Context, caller access.Caller, bookingID int64, req SubmitPaymentRequest) (*domain.Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(access.PaymentSubmit, caller, b); err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrBookingCancelled
	}
	if b.FinalAmount <= 0 {
		return nil, ErrNothingToPay
	}

	method, err := s.payments.GetMethod(ctx, req.PaymentMethodID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrMethodUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !method.IsActive {
		return nil, ErrMethodUnavailable
	}

	now := s.now().UTC()
	p := &domain.Payment{
		BookingID:            b.ID,
		UserID:               caller.ID,
		PaymentMethodID:      method.ID,
		Amount:               b.FinalAmount,
		Status:               domain.PaymentPending,
		TransactionReference: strings.TrimSpace(req.TransactionReference),
		PaymentProofURL:      strings.TrimSpace(req.PaymentProofURL),
		Notes:                strings.TrimSpace(req.Notes),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}
	p.PaymentMethod = method

	s.log.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"booking_id": b.ID,
		"amount":     p.Amount,
		"method":     method.Type,
	}).Info("payment submitted")
	return p, nil
}

func (s *Service) Confirm(ctx context.Context, caller access.Caller, id int64) (*domain.Payment, error) {
	return s.review(ctx, caller, id, func(p *domain.Payment, now time.Time) error {
		if p.Status != domain.PaymentPending {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentStatus, p.Status, domain.PaymentPaid)
		}
		p.Status = domain.PaymentPaid
		if p.PaidAt == nil {
			p.PaidAt = &now
		}
		reviewer := caller.ID
		p.ConfirmedBy = &reviewer
		p.ConfirmedAt = &now
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, caller access.Caller, id int64, notes string) (*domain.Payment, error) {
	return s.review(ctx, caller, id, func(p *domain.Payment, now time.Time) error {
		if p.Status != domain.PaymentPending {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentStatus, p.Status, domain.PaymentFailed)
		}
		p.Status = domain.PaymentFailed
		appendNote(p, notes)
		return nil
	})
}

func (s *Service) Refund(ctx context.Context, caller access.Caller, id int64, notes string) (*domain.Payment, error) {
	return s.review(ctx, caller, id, func(p *domain.Payment, now time.Time) error {
		if p.Status != domain.PaymentPaid {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentStatus, p.Status, domain.PaymentRefunded)
		}
		p.Status = domain.PaymentRefunded
		appendNote(p, notes)
		return nil
	})
}

func (s *Service) review(ctx context.Context, caller access.Caller, id int64, apply func(p *domain.Payment, now time.Time) error) (*domain.Payment, error) {
	if err := s.authz.Authorize(access.PaymentReview, caller, access.Resource{}); err != nil {
		return nil, err
	}
	p, err := s.payments.Mutate(ctx, id, func(p *domain.Payment) error {
		now := s.now().UTC()
		if err := apply(p, now); err != nil {
			return err
		}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id":  p.ID,
		"booking_id":  p.BookingID,
		"status":      p.Status,
		"reviewer_id": caller.ID,
	}).Info("payment reviewed")
	return p, nil
}

func (s *Service) ListForBooking(ctx context.Context, caller access.Caller, bookingID int64) ([]domain.Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(access.PaymentView, caller, b); err != nil {
		return nil, err
	}
	return s.payments.ListByBooking(ctx, bookingID)
}

func (s *Service) List(ctx context.Context, caller access.Caller, f ListFilter) ([]domain.Payment, error) {
	if err := s.authz.Authorize(access.PaymentList, caller, access.Resource{}); err != nil {
		return nil, err
	}
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	return s.payments.List(ctx, f)
}

func (s *Service) ListMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.payments.ListActiveMethods(ctx)
}

// ListAllMethods is the admin view of the catalog, retired methods included.
func (s *Service) ListAllMethods(ctx context.Context, caller access.Caller) ([]domain.PaymentMethod, error) {
	if err := s.authz.Authorize(access.PaymentMethodManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	return s.payments.ListMethods(ctx)
}

func (s *Service) CreateMethod(ctx context.Context, caller access.Caller, req CreateMethodRequest) (*domain.PaymentMethod, error) {
	if err := s.authz.Authorize(access.PaymentMethodManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	m := &domain.PaymentMethod{
		Name:          req.Name,
		Description:   strings.TrimSpace(req.Description),
		Type:          req.Type,
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		AccountName:   strings.TrimSpace(req.AccountName),
		BankName:      strings.TrimSpace(req.BankName),
		QRCodeURL:     strings.TrimSpace(req.QRCodeURL),
		IsActive:      true,
		DisplayOrder:  req.DisplayOrder,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.payments.CreateMethod(ctx, m); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"payment_method_id": m.ID, "type": m.Type}).Info("payment method created")
	return m, nil
}

func (s *Service) UpdateMethod(ctx context.Context, caller access.Caller, id int64, req UpdateMethodRequest) (*domain.PaymentMethod, error) {
	if err := s.authz.Authorize(access.PaymentMethodManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	setString := func(column string, v *string) {
		if v != nil {
			changes[column] = strings.TrimSpace(*v)
		}
	}
	setString("name", req.Name)
	setString("description", req.Description)
	setString("account_number", req.AccountNumber)
	setString("account_name", req.AccountName)
	setString("bank_name", req.BankName)
	setString("qr_code_url", req.QRCodeURL)
	if req.Type != nil {
		changes["type"] = string(*req.Type)
	}
	if req.DisplayOrder != nil {
		changes["display_order"] = *req.DisplayOrder
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}

	m, err := s.payments.UpdateMethod(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.log.WithField("payment_method_id", id).Info("payment method updated")
	return m, nil
}

// RetireMethod hides the method from checkout. Payments already made with it
// keep referencing the row.
func (s *Service) RetireMethod(ctx context.Context, caller access.Caller, id int64) error {
	if err := s.authz.Authorize(access.PaymentMethodManage, caller, access.Resource{}); err != nil {
		return err
	}
	if _, err := s.payments.UpdateMethod(ctx, id, map[string]any{"is_active": false}); err != nil {
		return err
	}
	s.log.WithField("payment_method_id", id).Info("payment method retired")
	return nil
}

// authorize hides bookings of other customers behind ErrNotFound.
func (s *Service) authorize(op access.Operation, caller access.Caller, b *domain.Booking) error {
	err := s.authz.Authorize(op, caller, access.Owned(b.UserID))
	if errors.Is(err, access.ErrForbidden) && !caller.IsStaff() && b.UserID != caller.ID {
		return domain.NotFound("booking", b.ID)
	}
	return err
}

func appendNote(p *domain.Payment, note string) {
	note = strings.TrimSpace(note)
	switch {
	case note == "":
	case p.Notes == "":
		p.Notes = note
	default:
		p.Notes += "\n" + note
	}
}
