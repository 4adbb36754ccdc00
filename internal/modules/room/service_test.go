package room

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"roombooking/internal/access"
	"roombooking/internal/database"
	"roombooking/internal/domain"
	"roombooking/internal/logger"
)

var (
	admin    = access.NewCaller(1, domain.RoleAdmin)
	desk     = access.NewCaller(2, domain.RoleStaff)
	customer = access.NewCaller(3, domain.RoleCustomer)
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	authz, err := access.NewAuthorizer()
	require.NoError(t, err)
	return NewService(NewRepository(db), authz, logger.Discard()), db
}

func validRoom(number string) CreateRoomRequest {
	return CreateRoomRequest{
		RoomNumber: number, Name: "Standard " + number, RoomType: "Standard",
		Capacity: 2, DailyRate: 50, MonthlyRate: 1200, Amenities: []string{"wifi", "tv"},
	}
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.Create(ctx, admin, validRoom("101"))
	require.NoError(t, err)
	assert.NotZero(t, room.ID)
	assert.True(t, room.IsActive)
	assert.Equal(t, domain.RoomAvailable, room.Status)

	var amenities []string
	require.NoError(t, json.Unmarshal(room.Amenities, &amenities))
	assert.Equal(t, []string{"wifi", "tv"}, amenities)

	_, err = svc.Create(ctx, admin, validRoom("101"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = svc.Create(ctx, desk, validRoom("102"))
	assert.ErrorIs(t, err, access.ErrForbidden)

	bad := validRoom("103")
	bad.Capacity = 0
	_, err = svc.Create(ctx, admin, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Update(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	room, err := svc.Create(ctx, admin, validRoom("201"))
	require.NoError(t, err)

	rate, capacity := 75.0, 3
	maintenance := domain.RoomMaintenance
	updated, err := svc.Update(ctx, admin, room.ID, UpdateRoomRequest{DailyRate: &rate, Capacity: &capacity, Status: &maintenance})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.DailyRate)
	assert.Equal(t, 3, updated.Capacity)
	assert.Equal(t, domain.RoomMaintenance, updated.Status)
	assert.Equal(t, 1200.0, updated.MonthlyRate)

	occupied := domain.RoomOccupied
	_, err = svc.Update(ctx, admin, room.ID, UpdateRoomRequest{Status: &occupied})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	require.NoError(t, db.Model(&domain.Room{}).Where("id = ?", room.ID).Update("status", domain.RoomOccupied).Error)
	available := domain.RoomAvailable
	_, err = svc.Update(ctx, admin, room.ID, UpdateRoomRequest{Status: &available})
	assert.ErrorIs(t, err, ErrStatusManagedByStay)

	_, err = svc.Update(ctx, admin, 999, UpdateRoomRequest{DailyRate: &rate})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// beforeNextUpdate runs query on the transaction of the next UPDATE against
// table, right before that UPDATE executes.
func beforeNextUpdate(t *testing.T, db *gorm.DB, table, query string, args ...any) {
	t.Helper()
	var fired atomic.Bool
	err := db.Callback().Update().Before("gorm:update").Register("test:interleave", func(tx *gorm.DB) {
		if tx.Statement.Table != table || !fired.CompareAndSwap(false, true) {
			return
		}
		if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, query, args...); err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func TestService_UpdateKeepsConcurrentStatusAndRetire(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	room, err := svc.Create(ctx, admin, validRoom("250"))
	require.NoError(t, err)

	// check-in и снятие номера коммитятся, пока админ редактирует название
	beforeNextUpdate(t, db, "rooms", "UPDATE rooms SET status = ?, is_active = ? WHERE id = ?",
		string(domain.RoomOccupied), false, room.ID)

	name := "Renamed"
	updated, err := svc.Update(ctx, admin, room.ID, UpdateRoomRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	var stored domain.Room
	require.NoError(t, db.First(&stored, room.ID).Error)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, domain.RoomOccupied, stored.Status)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 50.0, stored.DailyRate)
}

func TestService_RetireHidesRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, admin, validRoom("301"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, validRoom("302"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Retire(ctx, customer, a.ID), access.ErrForbidden)
	require.NoError(t, svc.Retire(ctx, admin, a.ID))

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rooms, total, err := svc.ListActive(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rooms, 1)
	assert.Equal(t, "302", rooms[0].RoomNumber)

	assert.ErrorIs(t, svc.Retire(ctx, admin, 999), domain.ErrNotFound)
}

func TestService_ListActiveFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	big := validRoom("401")
	big.Capacity = 4
	big.DailyRate = 120
	_, err := svc.Create(ctx, admin, big)
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, validRoom("402"))
	require.NoError(t, err)

	rooms, total, err := svc.ListActive(ctx, Filter{MinCapacity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "401", rooms[0].RoomNumber)

	rooms, _, err = svc.ListActive(ctx, Filter{MaxDailyRate: 60})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "402", rooms[0].RoomNumber)

	rooms, total, err = svc.ListActive(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rooms, 1)
	assert.Equal(t, "402", rooms[0].RoomNumber)
}

func TestService_BusyRanges(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	room, err := svc.Create(ctx, admin, validRoom("501"))
	require.NoError(t, err)
	user := domain.User{Email: "guest@example.com", PasswordHash: "x", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	bookings := []domain.Booking{
		{UserID: user.ID, RoomID: room.ID, BookingType: domain.BookingDaily, CheckInDate: d(1), CheckOutDate: d(4), NumberOfGuests: 1, Status: domain.BookingConfirmed, Version: 1},
		{UserID: user.ID, RoomID: room.ID, BookingType: domain.BookingDaily, CheckInDate: d(5), CheckOutDate: d(7), NumberOfGuests: 1, Status: domain.BookingCancelled, Version: 1},
		{UserID: user.ID, RoomID: room.ID, BookingType: domain.BookingDaily, CheckInDate: d(10), CheckOutDate: d(12), NumberOfGuests: 1, Status: domain.BookingPending, Version: 1},
		{UserID: user.ID, RoomID: room.ID, BookingType: domain.BookingDaily, CheckInDate: d(20), CheckOutDate: d(22), NumberOfGuests: 1, Status: domain.BookingPending, Version: 1},
	}
	require.NoError(t, db.Omit("User", "Room").Create(&bookings).Error)

	busy, err := svc.BusyRanges(ctx, room.ID, d(3), d(15))
	require.NoError(t, err)
	require.Len(t, busy, 2)
	assert.Equal(t, d(1), busy[0].CheckIn)
	assert.Equal(t, domain.BookingConfirmed, busy[0].Status)
	assert.Equal(t, d(10), busy[1].CheckIn)

	_, err = svc.BusyRanges(ctx, room.ID, d(15), d(15))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.BusyRanges(ctx, 999, d(1), d(2))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
