package payment

import (
	"context"

	"roombooking/internal/access"
	"roombooking/internal/domain"
)

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// paymentRepo — хранилище платежей и способов оплаты
type paymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	List(ctx context.Context, f ListFilter) ([]domain.Payment, error)
	// Mutate locks the payment row, applies fn and saves the result in one transaction.
	Mutate(ctx context.Context, id int64, fn func(p *domain.Payment) error) (*domain.Payment, error)

	GetMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	ListActiveMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	ListMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	CreateMethod(ctx context.Context, m *domain.PaymentMethod) error
	UpdateMethod(ctx context.Context, id int64, changes map[string]any) (*domain.PaymentMethod, error)
}

type Authorizer interface {
	Authorize(op access.Operation, caller access.Caller, res access.Resource) error
}
