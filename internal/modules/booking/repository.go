package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roombooking/internal/database"
	"roombooking/internal/domain"
)

// GormStore is the relational Store. Row locks are honoured by PostgreSQL;
// SQLite serializes writers on its single connection instead.
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db})
	})
	return database.TranslateError(err)
}

func (s *GormStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := s.db.WithContext(ctx).Preload("Room").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("booking", id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := s.db.WithContext(ctx).
		Preload("Room").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) List(ctx context.Context, f ListFilter) ([]domain.Booking, error) {
	q := s.db.WithContext(ctx).Model(&domain.Booking{}).Preload("Room").Preload("User")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.From != nil {
		q = q.Where("check_out_date > ?", domain.DateOnly(*f.From))
	}
	if f.To != nil {
		q = q.Where("check_in_date < ?", domain.DateOnly(*f.To))
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []domain.Booking
	err := q.Order("check_in_date ASC, id ASC").Limit(limit).Offset(f.Offset).Find(&rows).Error
	return rows, err
}

// FindActiveByCode implements PromotionFinder.
func (s *GormStore) FindActiveByCode(ctx context.Context, code string, at time.Time) (*domain.Promotion, error) {
	var p domain.Promotion
	err := s.db.WithContext(ctx).
		Where("promo_code = ? AND is_active = ?", code, true).
		Where("start_date <= ? AND end_date >= ?", at, at).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("promotion", code)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) GetRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	return t.findRoom(t.db.WithContext(ctx), roomID)
}

func (t *gormTx) LockRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	return t.findRoom(t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), roomID)
}

func (t *gormTx) findRoom(q *gorm.DB, roomID int64) (*domain.Room, error) {
	var room domain.Room
	err := q.First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("room", roomID)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (t *gormTx) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := t.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("booking", id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindOverlappingBookings returns bookings whose [check_in, check_out) meets
// [checkIn, checkOut). Touching endpoints do not overlap.
func (t *gormTx) FindOverlappingBookings(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, excludeBookingID int64) ([]domain.Booking, error) {
	q := t.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)

	if len(excludeStatuses) > 0 {
		statuses := make([]string, 0, len(excludeStatuses))
		for _, st := range excludeStatuses {
			statuses = append(statuses, string(st))
		}
		q = q.Where("status NOT IN ?", statuses)
	}
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}

	var rows []domain.Booking
	if err := q.Order("check_in_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *gormTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	if b.Version == 0 {
		b.Version = 1
	}
	return database.TranslateError(t.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (t *gormTx) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	prev := b.Version
	res := t.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND version = ?", b.ID, prev).
		Updates(map[string]any{
			"status":                b.Status,
			"check_in_date":         b.CheckInDate,
			"check_out_date":        b.CheckOutDate,
			"total_amount":          b.TotalAmount,
			"discount_amount":       b.DiscountAmount,
			"final_amount":          b.FinalAmount,
			"cancellation_reason":   b.CancellationReason,
			"postpone_requested_at": b.PostponeRequestedAt,
			"new_check_in_date":     b.NewCheckInDate,
			"new_check_out_date":    b.NewCheckOutDate,
			"postpone_reason":       b.PostponeReason,
			"checked_in_at":         b.CheckedInAt,
			"checked_out_at":        b.CheckedOutAt,
			"version":               prev + 1,
			"updated_at":            b.UpdatedAt,
		})
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %d version %d: %w", b.ID, prev, domain.ErrConcurrencyConflict)
	}
	b.Version = prev + 1
	return nil
}

func (t *gormTx) UpdateRoom(ctx context.Context, room *domain.Room) error {
	res := t.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", room.ID).
		Updates(map[string]any{"status": room.Status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("room", room.ID)
	}
	return nil
}
