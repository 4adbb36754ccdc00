package booking

import (
	"context"
	"time"

	"roombooking/internal/access"
	"roombooking/internal/domain"
)

// Store opens one unit of work per lifecycle operation and serves read views.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Booking, error)
}

// Tx is valid only inside the WithinTx callback that produced it.
type Tx interface {
	GetRoom(ctx context.Context, roomID int64) (*domain.Room, error)
	// LockRoom reads the room and holds a row lock until the unit of work ends.
	LockRoom(ctx context.Context, roomID int64) (*domain.Room, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	FindOverlappingBookings(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, excludeBookingID int64) ([]domain.Booking, error)
	InsertBooking(ctx context.Context, b *domain.Booking) error
	// UpdateBooking fails with domain.ErrConcurrencyConflict when b.Version is stale.
	UpdateBooking(ctx context.Context, b *domain.Booking) error
	UpdateRoom(ctx context.Context, room *domain.Room) error
}

type PromotionFinder interface {
	FindActiveByCode(ctx context.Context, code string, at time.Time) (*domain.Promotion, error)
}

type Authorizer interface {
	Authorize(op access.Operation, caller access.Caller, res access.Resource) error
}
