package report

import (
	"context"
	"time"

	"gorm.io/gorm"

	"roombooking/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BookingsCreated returns bookings created in [from, to).
func (r *Repository) BookingsCreated(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// PaidRevenue sums payments marked paid in [from, to).
func (r *Repository) PaidRevenue(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", domain.PaymentPaid, from, to).
		Scan(&total).Error
	return total, err
}

// RentalsStarting returns rentals whose billing period starts in [from, to).
func (r *Repository) RentalsStarting(ctx context.Context, from, to time.Time) ([]domain.MonthlyRental, error) {
	var rows []domain.MonthlyRental
	err := r.db.WithContext(ctx).
		Preload("Booking.Room").
		Preload("Booking.User").
		Where("billing_period_start >= ? AND billing_period_start < ?", from, to).
		Order("billing_period_start ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Dashboard(ctx context.Context, today time.Time) (*Dashboard, error) {
	db := r.db.WithContext(ctx)
	d := &Dashboard{}

	counts := []struct {
		dst   *int64
		model any
		query string
		args  []any
	}{
		{&d.ActiveRooms, &domain.Room{}, "is_active = ?", []any{true}},
		{&d.AvailableRooms, &domain.Room{}, "is_active = ? AND status = ?", []any{true, domain.RoomAvailable}},
		{&d.TotalBookings, &domain.Booking{}, "1 = 1", nil},
		{&d.PendingBookings, &domain.Booking{}, "status = ?", []any{domain.BookingPending}},
		{&d.TodayCheckIns, &domain.Booking{}, "check_in_date = ? AND status IN ?",
			[]any{today, []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed}}},
		{&d.TodayCheckOuts, &domain.Booking{}, "check_out_date = ? AND status = ?", []any{today, domain.BookingCheckedIn}},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.query, c.args...).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	revenue, err := r.PaidRevenue(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	d.MonthRevenue = domain.RoundMoney(revenue)
	return d, nil
}
