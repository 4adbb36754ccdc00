package payment

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

func (r *Repository) Create(ctx context.Context, p *domain.Payment) error {
	return database.TranslateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.find(r.db.WithContext(ctx).Preload("PaymentMethod"), id)
}

func (r *Repository) find(q *gorm.DB, id int64) (*domain.Payment, error) {
	var p domain.Payment
	err := q.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("payment", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	var rows []domain.Payment
	err := r.db.WithContext(ctx).
		Preload("PaymentMethod").
		Where("booking_id = ?", bookingID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]domain.Payment, error) {
	q := r.db.WithContext(ctx).Preload("PaymentMethod").Preload("User")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var rows []domain.Payment
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error
	return rows, err
}

func (r *Repository) Mutate(ctx context.Context, id int64, fn func(p *domain.Payment) error) (*domain.Payment, error) {
	var out *domain.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := r.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return out, nil
}

func (r *Repository) GetMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	return r.findMethod(r.db.WithContext(ctx), id)
}

func (r *Repository) ListActiveMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	var rows []domain.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateMethod(ctx context.Context, m *domain.PaymentMethod) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(m).Error)
}

// ListMethods returns retired methods too, in checkout order.
func (r *Repository) ListMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	var rows []domain.PaymentMethod
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&rows).Error
	return rows, err
}

// UpdateMethod writes only the given columns of a locked method row.
func (r *Repository) UpdateMethod(ctx context.Context, id int64, changes map[string]any) (*domain.PaymentMethod, error) {
	var out *domain.PaymentMethod
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.findMethod(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id); err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := tx.Model(&domain.PaymentMethod{}).Where("id = ?", id).Updates(changes).Error; err != nil {
				return err
			}
		}
		m, err := r.findMethod(tx, id)
		out = m
		return err
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return out, nil
}

func (r *Repository) findMethod(q *gorm.DB, id int64) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := q.First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("payment method", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
