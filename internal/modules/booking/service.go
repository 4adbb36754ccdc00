package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"roombooking/internal/access"
	"roombooking/internal/domain"
)

// excludedFromOverlap are statuses that no longer hold the room.
var excludedFromOverlap = []domain.BookingStatus{domain.BookingCancelled}

// allowed lists every status change the lifecycle permits.
var allowed = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:           {domain.BookingConfirmed, domain.BookingCheckedIn, domain.BookingPostponeRequested, domain.BookingCancelled},
	domain.BookingConfirmed:         {domain.BookingCheckedIn, domain.BookingPostponeRequested, domain.BookingCancelled},
	domain.BookingPostponeRequested: {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingCheckedIn:         {domain.BookingCheckedOut},
}

func CanTransition(from, to domain.BookingStatus) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ensureTransition(b *domain.Booking, to domain.BookingStatus) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, to)
	}
	return nil
}

// ComputeTotal prices the stay: daily rate per night, or one monthly rate.
func ComputeTotal(room *domain.Room, bookingType domain.BookingType, checkIn, checkOut time.Time) float64 {
	if bookingType == domain.BookingMonthly {
		return domain.RoundMoney(room.MonthlyRate)
	}
	return domain.RoundMoney(room.DailyRate * float64(domain.Nights(checkIn, checkOut)))
}

type Service struct {
	store      Store
	promotions PromotionFinder
	authz      Authorizer
	events     domain.BookingEventPublisher
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(store Store, promotions PromotionFinder, authz Authorizer, events domain.BookingEventPublisher, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:      store,
		promotions: promotions,
		authz:      authz,
		events:     events,
		log:        log.WithField("module", "booking"),
		now:        time.Now,
	}
}

func (s *Service) CreateBooking(ctx context.Context, caller access.Caller, in CreateBookingInput) (*domain.Booking, error) {
	if err := s.authz.Authorize(access.BookingCreate, caller, access.Resource{}); err != nil {
		return nil, err
	}

	bookingType := in.BookingType
	if bookingType == "" {
		bookingType = domain.BookingDaily
	}
	if !bookingType.Valid() {
		return nil, ErrInvalidBookingType
	}
	checkIn, checkOut := domain.DateOnly(in.CheckInDate), domain.DateOnly(in.CheckOutDate)
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDateRange
	}
	if in.NumberOfGuests < 1 {
		return nil, ErrInvalidGuests
	}

	now := s.now().UTC()
	promo, err := s.findPromotion(ctx, in.PromoCode, now)
	if err != nil {
		return nil, err
	}

	var created *domain.Booking
	err = s.store.WithinTx(ctx, func(tx Tx) error {
		room, err := tx.LockRoom(ctx, in.RoomID)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return ErrRoomInactive
		}
		if in.NumberOfGuests > room.Capacity {
			return ErrCapacityExceeded
		}
		if err := ensureAvailable(ctx, tx, room.ID, checkIn, checkOut, 0); err != nil {
			return err
		}

		total := ComputeTotal(room, bookingType, checkIn, checkOut)
		b := &domain.Booking{
			UserID:          caller.ID,
			RoomID:          room.ID,
			BookingType:     bookingType,
			CheckInDate:     checkIn,
			CheckOutDate:    checkOut,
			NumberOfGuests:  in.NumberOfGuests,
			Status:          domain.BookingPending,
			SpecialRequests: strings.TrimSpace(in.SpecialRequests),
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if promo != nil {
			b.PromoCode = promo.PromoCode
		}
		b.ApplyAmounts(total, promo.DiscountFor(total))

		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": created.ID,
		"room_id":    created.RoomID,
		"user_id":    created.UserID,
		"final":      created.FinalAmount,
	}).Info("booking created")
	s.publish(ctx, domain.EventBookingCreated, created)
	return created, nil
}

func (s *Service) Confirm(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingConfirm, domain.EventBookingConfirmed,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if b.Status != domain.BookingPending {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, domain.BookingConfirmed)
			}
			b.Status = domain.BookingConfirmed
			return nil
		})
}

// CheckIn marks the guest as arrived and occupies the room in the same unit of work.
func (s *Service) CheckIn(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingCheckIn, domain.EventBookingCheckedIn,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if err := ensureTransition(b, domain.BookingCheckedIn); err != nil {
				return err
			}
			if err := s.setRoomStatus(ctx, tx, b.RoomID, domain.RoomOccupied); err != nil {
				return err
			}
			b.Status = domain.BookingCheckedIn
			b.CheckedInAt = &now
			return nil
		})
}

func (s *Service) CheckOut(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingCheckOut, domain.EventBookingCheckedOut,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if err := ensureTransition(b, domain.BookingCheckedOut); err != nil {
				return err
			}
			if err := s.setRoomStatus(ctx, tx, b.RoomID, domain.RoomAvailable); err != nil {
				return err
			}
			b.Status = domain.BookingCheckedOut
			b.CheckedOutAt = &now
			return nil
		})
}

// RequestPostpone records proposed dates; the active dates stay until approval.
func (s *Service) RequestPostpone(ctx context.Context, caller access.Caller, id int64, newCheckIn, newCheckOut time.Time, reason string) (*domain.Booking, error) {
	newIn, newOut := domain.DateOnly(newCheckIn), domain.DateOnly(newCheckOut)
	if !newOut.After(newIn) {
		return nil, ErrInvalidDateRange
	}

	return s.transition(ctx, caller, id, access.BookingRequestPostpone, domain.EventBookingPostponeRequested,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if err := ensureTransition(b, domain.BookingPostponeRequested); err != nil {
				return err
			}
			// ранняя проверка, окончательная при одобрении
			if _, err := tx.LockRoom(ctx, b.RoomID); err != nil {
				return err
			}
			if err := ensureAvailable(ctx, tx, b.RoomID, newIn, newOut, b.ID); err != nil {
				return err
			}
			b.NewCheckInDate = &newIn
			b.NewCheckOutDate = &newOut
			b.PostponeReason = strings.TrimSpace(reason)
			b.PostponeRequestedAt = &now
			b.Status = domain.BookingPostponeRequested
			return nil
		})
}

// ApprovePostpone moves the booking to its proposed dates and reprices it.
func (s *Service) ApprovePostpone(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingApprovePostpone, domain.EventBookingPostponeApproved,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if b.NewCheckInDate == nil || b.NewCheckOutDate == nil {
				return ErrPostponeNotRequested
			}
			if b.Status != domain.BookingPostponeRequested {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, domain.BookingConfirmed)
			}
			newIn, newOut := *b.NewCheckInDate, *b.NewCheckOutDate

			room, err := tx.LockRoom(ctx, b.RoomID)
			if err != nil {
				return err
			}
			if err := ensureAvailable(ctx, tx, b.RoomID, newIn, newOut, b.ID); err != nil {
				return err
			}

			b.CheckInDate = newIn
			b.CheckOutDate = newOut
			total := ComputeTotal(room, b.BookingType, newIn, newOut)
			discount := b.DiscountAmount
			if discount > total {
				discount = total
			}
			b.ApplyAmounts(total, discount)
			b.ClearPostpone()
			b.Status = domain.BookingConfirmed
			return nil
		})
}

// RejectPostpone drops the proposal; the original dates stand.
func (s *Service) RejectPostpone(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingRejectPostpone, domain.EventBookingPostponeRejected,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if b.Status != domain.BookingPostponeRequested {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, domain.BookingConfirmed)
			}
			b.ClearPostpone()
			b.Status = domain.BookingConfirmed
			return nil
		})
}

func (s *Service) Cancel(ctx context.Context, caller access.Caller, id int64, reason string) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingCancel, domain.EventBookingCancelled,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if err := ensureTransition(b, domain.BookingCancelled); err != nil {
				return err
			}
			b.ClearPostpone()
			b.CancellationReason = strings.TrimSpace(reason)
			b.Status = domain.BookingCancelled
			return nil
		})
}

func (s *Service) AdjustDiscount(ctx context.Context, caller access.Caller, id int64, discount float64) (*domain.Booking, error) {
	return s.transition(ctx, caller, id, access.BookingAdjustDiscount, domain.EventBookingDiscountAdjusted,
		func(tx Tx, b *domain.Booking, now time.Time) error {
			if b.Status.IsTerminal() {
				return fmt.Errorf("%w: booking is %s", ErrInvalidStatusTransition, b.Status)
			}
			if discount < 0 || discount > b.TotalAmount {
				return ErrInvalidDiscount
			}
			b.ApplyAmounts(b.TotalAmount, discount)
			return nil
		})
}

func (s *Service) Get(ctx context.Context, caller access.Caller, id int64) (*domain.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBooking(access.BookingView, caller, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, caller access.Caller) ([]domain.Booking, error) {
	if caller.ID == 0 {
		return nil, access.ErrForbidden
	}
	return s.store.ListByUser(ctx, caller.ID)
}

func (s *Service) List(ctx context.Context, caller access.Caller, filter ListFilter) ([]domain.Booking, error) {
	if err := s.authz.Authorize(access.BookingListAll, caller, access.Resource{}); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter)
}

type mutation func(tx Tx, b *domain.Booking, now time.Time) error

// transition loads the booking, checks permission, applies the mutation and
// writes it back in one unit of work. A stale version is retried once.
func (s *Service) transition(ctx context.Context, caller access.Caller, id int64, op access.Operation, event domain.BookingEventType, apply mutation) (*domain.Booking, error) {
	var result *domain.Booking
	attempt := func() error {
		return s.store.WithinTx(ctx, func(tx Tx) error {
			b, err := tx.GetBooking(ctx, id)
			if err != nil {
				return err
			}
			if err := s.authorizeBooking(op, caller, b); err != nil {
				return err
			}
			now := s.now().UTC()
			if err := apply(tx, b, now); err != nil {
				return err
			}
			b.UpdatedAt = now
			if err := tx.UpdateBooking(ctx, b); err != nil {
				return err
			}
			result = b
			return nil
		})
	}

	err := attempt()
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		s.log.WithFields(logrus.Fields{"booking_id": id, "op": op.String()}).Warn("booking modified concurrently, retrying")
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": result.ID,
		"op":         op.String(),
		"status":     result.Status,
		"caller_id":  caller.ID,
	}).Info("booking transition")
	s.publish(ctx, event, result)
	return result, nil
}

// authorizeBooking hides other customers' bookings behind ErrNotFound.
func (s *Service) authorizeBooking(op access.Operation, caller access.Caller, b *domain.Booking) error {
	err := s.authz.Authorize(op, caller, access.Owned(b.UserID))
	if errors.Is(err, access.ErrForbidden) && !caller.IsStaff() && b.UserID != caller.ID {
		return domain.NotFound("booking", b.ID)
	}
	return err
}

func (s *Service) setRoomStatus(ctx context.Context, tx Tx, roomID int64, status domain.RoomStatus) error {
	room, err := tx.LockRoom(ctx, roomID)
	if err != nil {
		return err
	}
	room.Status = status
	return tx.UpdateRoom(ctx, room)
}

func (s *Service) findPromotion(ctx context.Context, code string, at time.Time) (*domain.Promotion, error) {
	code = strings.TrimSpace(code)
	if code == "" || s.promotions == nil {
		return nil, nil
	}
	p, err := s.promotions.FindActiveByCode(ctx, code, at)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidPromoCode
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, t domain.BookingEventType, b *domain.Booking) {
	if s.events == nil {
		return
	}
	s.events.PublishBookingEvent(ctx, domain.NewBookingEvent(t, b, s.now().UTC()))
}

// ensureAvailable rejects [checkIn, checkOut) when it meets a booking that
// still holds the room.
func ensureAvailable(ctx context.Context, tx Tx, roomID int64, checkIn, checkOut time.Time, excludeID int64) error {
	conflicts, err := tx.FindOverlappingBookings(ctx, roomID, checkIn, checkOut, excludedFromOverlap, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return ErrRoomUnavailable
	}
	return nil
}
