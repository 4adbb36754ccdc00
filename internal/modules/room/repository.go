package room

import (
	"context"
	"errors"
	"time"

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

func (r *Repository) Create(ctx context.Context, room *domain.Room) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(room).Error)
}

// Update locks the room row and writes only the columns fn returns, so status
// and is_active changed by a stay or a retire in the meantime survive an edit.
func (r *Repository) Update(ctx context.Context, id int64, fn func(current *domain.Room) (map[string]any, error)) (*domain.Room, error) {
	var out *domain.Room
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		changes, err := fn(current)
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := tx.Model(&domain.Room{}).Where("id = ?", id).Updates(changes).Error; err != nil {
				return err
			}
		}
		out, err = r.find(tx, id)
		return err
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return out, nil
}

// GetByID returns retired rooms too; callers decide whether that matters.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *Repository) find(q *gorm.DB, id int64) (*domain.Room, error) {
	var room domain.Room
	err := q.First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("room", id)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *Repository) ListActive(ctx context.Context, f Filter) ([]domain.Room, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Room{}).Where("is_active = ?", true)
	if f.RoomType != "" {
		q = q.Where("room_type = ?", f.RoomType)
	}
	if f.MinCapacity > 0 {
		q = q.Where("capacity >= ?", f.MinCapacity)
	}
	if f.MaxDailyRate > 0 {
		q = q.Where("daily_rate <= ?", f.MaxDailyRate)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []domain.Room
	err := q.Order("room_number ASC").Limit(f.Limit).Offset(f.Offset).Find(&rooms).Error
	return rooms, total, err
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("room", id)
	}
	return nil
}

// BusyRanges lists bookings that still hold the room within [from, to).
func (r *Repository) BusyRanges(ctx context.Context, roomID int64, from, to time.Time) ([]domain.BusyRange, error) {
	var rows []domain.Booking
	err := r.db.WithContext(ctx).
		Select("id", "check_in_date", "check_out_date", "status").
		Where("room_id = ? AND status <> ?", roomID, domain.BookingCancelled).
		Where("check_in_date < ? AND check_out_date > ?", to, from).
		Order("check_in_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.BusyRange, 0, len(rows))
	for _, b := range rows {
		out = append(out, domain.BusyRange{
			BookingID: b.ID,
			CheckIn:   b.CheckInDate,
			CheckOut:  b.CheckOutDate,
			Status:    b.Status,
		})
	}
	return out, nil
}
