package rental

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roombooking/internal/database"
	"roombooking/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m *domain.MonthlyRental) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	return database.TranslateError(err)
}

// Mutate locks the rental row, applies fn and writes back only the columns fn
// names, in one transaction. Meter edits and payment confirmation own disjoint
// columns and never undo each other.
func (r *Repository) Mutate(ctx context.Context, id int64, fn func(m *domain.MonthlyRental) ([]string, error)) (*domain.MonthlyRental, error) {
	var out *domain.MonthlyRental
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		columns, err := fn(m)
		if err != nil {
			return err
		}
		if err := tx.Model(m).Select(columns).Updates(m).Error; err != nil {
			return err
		}
		out, err = r.find(tx.Preload("Booking.Room").Preload("Booking.User"), id)
		return err
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.MonthlyRental, error) {
	return r.find(r.db.WithContext(ctx).Preload("Booking.Room").Preload("Booking.User"), id)
}

func (r *Repository) find(q *gorm.DB, id int64) (*domain.MonthlyRental, error) {
	var m domain.MonthlyRental
	err := q.First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("monthly rental", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.MonthlyRental{}).Where("booking_id = ?", bookingID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]domain.MonthlyRental, error) {
	q := r.db.WithContext(ctx).Preload("Booking.Room").Preload("Booking.User")
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.BookingID != 0 {
		q = q.Where("booking_id = ?", f.BookingID)
	}
	var rows []domain.MonthlyRental
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}
