package booking

import (
	"context"
	"errors"
	"sync"
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

type fixture struct {
	db    *gorm.DB
	svc   *Service
	store *GormStore
	room  *domain.Room
	owner access.Caller
	other access.Caller
	staff access.Caller
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	users := []domain.User{
		{Email: "owner@example.com", PasswordHash: "x", Role: domain.RoleCustomer, IsActive: true},
		{Email: "other@example.com", PasswordHash: "x", Role: domain.RoleCustomer, IsActive: true},
		{Email: "desk@example.com", PasswordHash: "x", Role: domain.RoleStaff, IsActive: true},
	}
	require.NoError(t, db.Create(&users).Error)

	room := &domain.Room{
		RoomNumber: "101", Name: "Deluxe Room", RoomType: "Deluxe", Capacity: 2,
		DailyRate: 50, MonthlyRate: 1200, Status: domain.RoomAvailable, IsActive: true,
	}
	require.NoError(t, db.Create(room).Error)

	authz, err := access.NewAuthorizer()
	require.NoError(t, err)
	store := NewStore(db)
	svc := NewService(store, store, authz, nil, logger.Discard())
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		db:    db,
		svc:   svc,
		store: store,
		room:  room,
		owner: access.NewCaller(users[0].ID, domain.RoleCustomer),
		other: access.NewCaller(users[1].ID, domain.RoleCustomer),
		staff: access.NewCaller(users[2].ID, domain.RoleStaff),
	}
}

func jan(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) book(t *testing.T, caller access.Caller, in, out time.Time) (*domain.Booking, error) {
	t.Helper()
	return f.svc.CreateBooking(context.Background(), caller, CreateBookingInput{
		RoomID: f.room.ID, CheckInDate: in, CheckOutDate: out, NumberOfGuests: 1,
	})
}

func (f *fixture) roomStatus(t *testing.T) domain.RoomStatus {
	t.Helper()
	var room domain.Room
	require.NoError(t, f.db.First(&room, f.room.ID).Error)
	return room.Status
}

func TestLifecycle_OverlapRules(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	first, err := f.book(t, f.owner, jan(10), jan(15))
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.staff, first.ID)
	require.NoError(t, err)

	_, err = f.book(t, f.other, jan(12), jan(20))
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	_, err = f.book(t, f.other, jan(5), jan(11))
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	// соседние интервалы не пересекаются
	adjacent, err := f.book(t, f.other, jan(15), jan(20))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, adjacent.Status)

	before, err := f.book(t, f.other, jan(8), jan(10))
	require.NoError(t, err)
	assert.Equal(t, 100.0, before.FinalAmount)
}

func TestLifecycle_CancelledBookingFreesRoom(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b, err := f.book(t, f.owner, jan(10), jan(15))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, f.owner, b.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	assert.Equal(t, "plans changed", cancelled.CancellationReason)

	_, err = f.book(t, f.other, jan(11), jan(14))
	assert.NoError(t, err)

	// из терминального состояния выхода нет
	_, err = f.svc.Confirm(ctx, f.staff, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestLifecycle_CheckInCheckOut(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)
	assert.Equal(t, 150.0, b.TotalAmount)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t))

	in, err := f.svc.CheckIn(ctx, f.staff, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, in.Status)
	assert.NotNil(t, in.CheckedInAt)
	assert.Equal(t, domain.RoomOccupied, f.roomStatus(t))

	// после заселения отменить нельзя
	_, err = f.svc.Cancel(ctx, f.staff, b.ID, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	out, err := f.svc.CheckOut(ctx, f.staff, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedOut, out.Status)
	assert.NotNil(t, out.CheckedInAt)
	assert.NotNil(t, out.CheckedOutAt)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t))

	stored, err := f.store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Version)
	assert.Equal(t, domain.BookingCheckedOut, stored.Status)
	require.NotNil(t, stored.Room)
	assert.Equal(t, "101", stored.Room.RoomNumber)

	for _, op := range []func(context.Context, access.Caller, int64) (*domain.Booking, error){
		f.svc.Confirm, f.svc.CheckIn, f.svc.CheckOut, f.svc.ApprovePostpone, f.svc.RejectPostpone,
	} {
		_, err := op(ctx, f.staff, b.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestLifecycle_CheckOutRequiresCheckIn(t *testing.T) {
	f := setupFixture(t)

	b, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), f.staff, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t))
}

func TestLifecycle_PostponeApproved(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)
	_, err = f.svc.AdjustDiscount(ctx, f.staff, b.ID, 30)
	require.NoError(t, err)

	requested, err := f.svc.RequestPostpone(ctx, f.owner, b.ID, jan(20), jan(25), "flight moved")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPostponeRequested, requested.Status)
	assert.Equal(t, jan(10), requested.CheckInDate)
	require.NotNil(t, requested.NewCheckInDate)
	assert.Equal(t, jan(20), *requested.NewCheckInDate)

	approved, err := f.svc.ApprovePostpone(ctx, f.staff, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, approved.Status)
	assert.Equal(t, jan(20), approved.CheckInDate)
	assert.Equal(t, jan(25), approved.CheckOutDate)
	assert.Nil(t, approved.NewCheckInDate)
	assert.Nil(t, approved.NewCheckOutDate)
	assert.Equal(t, 250.0, approved.TotalAmount)
	assert.Equal(t, 30.0, approved.DiscountAmount)
	assert.Equal(t, approved.TotalAmount-approved.DiscountAmount, approved.FinalAmount)

	// старые даты освобождены
	_, err = f.book(t, f.other, jan(10), jan(13))
	assert.NoError(t, err)
}

func TestLifecycle_PostponeConflicts(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	mine, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)
	_, err = f.book(t, f.other, jan(14), jan(16))
	require.NoError(t, err)

	// ранняя проверка при запросе
	_, err = f.svc.RequestPostpone(ctx, f.owner, mine.ID, jan(15), jan(18), "")
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	// сдвиг внутри собственного интервала не конфликтует сам с собой
	_, err = f.svc.RequestPostpone(ctx, f.owner, mine.ID, jan(11), jan(14), "")
	require.NoError(t, err)
	_, err = f.svc.RejectPostpone(ctx, f.staff, mine.ID)
	require.NoError(t, err)

	// окно свободно при запросе, но занято к моменту одобрения
	_, err = f.svc.RequestPostpone(ctx, f.owner, mine.ID, jan(20), jan(25), "")
	require.NoError(t, err)
	_, err = f.book(t, f.other, jan(22), jan(24))
	require.NoError(t, err)

	_, err = f.svc.ApprovePostpone(ctx, f.staff, mine.ID)
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	stored, err := f.store.GetByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPostponeRequested, stored.Status)
	assert.Equal(t, jan(10), stored.CheckInDate)
}

func TestLifecycle_RejectPostponeKeepsDates(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)
	_, err = f.svc.RequestPostpone(ctx, f.owner, b.ID, jan(20), jan(22), "")
	require.NoError(t, err)

	rejected, err := f.svc.RejectPostpone(ctx, f.staff, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, rejected.Status)
	assert.Equal(t, jan(10), rejected.CheckInDate)
	assert.Nil(t, rejected.NewCheckInDate)

	_, err = f.svc.ApprovePostpone(ctx, f.staff, b.ID)
	assert.ErrorIs(t, err, ErrPostponeNotRequested)
}

func TestLifecycle_OwnershipRules(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)

	_, err = f.svc.RequestPostpone(ctx, f.other, b.ID, jan(20), jan(22), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Cancel(ctx, f.other, b.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.CheckIn(ctx, f.owner, b.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	mine, err := f.svc.ListMine(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := f.svc.ListMine(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestLifecycle_PromotionFromStore(t *testing.T) {
	f := setupFixture(t)

	amount := 40.0
	require.NoError(t, f.db.Create(&domain.Promotion{
		Title: "Winter", PromoCode: "WINTER", DiscountAmount: &amount,
		StartDate: jan(1), EndDate: jan(31), IsActive: true,
	}).Error)
	require.NoError(t, f.db.Create(&domain.Promotion{
		Title: "Old", PromoCode: "OLD", DiscountAmount: &amount,
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), IsActive: true,
	}).Error)

	b, err := f.svc.CreateBooking(context.Background(), f.owner, CreateBookingInput{
		RoomID: f.room.ID, CheckInDate: jan(10), CheckOutDate: jan(11), NumberOfGuests: 1, PromoCode: "WINTER",
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, b.TotalAmount)
	assert.Equal(t, 40.0, b.DiscountAmount)
	assert.Equal(t, 10.0, b.FinalAmount)

	_, err = f.svc.CreateBooking(context.Background(), f.owner, CreateBookingInput{
		RoomID: f.room.ID, CheckInDate: jan(20), CheckOutDate: jan(21), NumberOfGuests: 1, PromoCode: "OLD",
	})
	assert.ErrorIs(t, err, ErrInvalidPromoCode)
}

func TestLifecycle_RetiredRoom(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.db.Model(&domain.Room{}).Where("id = ?", f.room.ID).Update("is_active", false).Error)

	_, err := f.book(t, f.owner, jan(10), jan(13))
	assert.ErrorIs(t, err, ErrRoomInactive)
}

func TestLifecycle_ConcurrentCreatesOneWins(t *testing.T) {
	f := setupFixture(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
		other     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := f.owner
			if i%2 == 1 {
				caller = f.other
			}
			_, err := f.book(t, caller, jan(10+i%3), jan(15))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrRoomUnavailable):
				rejected++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	var count int64
	require.NoError(t, f.db.Model(&domain.Booking{}).Where("status <> ?", domain.BookingCancelled).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_UpdateBooking_StaleVersion(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b, err := f.book(t, f.owner, jan(10), jan(13))
	require.NoError(t, err)

	stale := *b
	require.NoError(t, f.store.WithinTx(ctx, func(tx Tx) error {
		b.Status = domain.BookingConfirmed
		return tx.UpdateBooking(ctx, b)
	}))
	assert.Equal(t, int64(2), b.Version)

	err = f.store.WithinTx(ctx, func(tx Tx) error {
		stale.Status = domain.BookingCancelled
		return tx.UpdateBooking(ctx, &stale)
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	stored, err := f.store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, stored.Status)
}

func TestStore_TxRollsBackOnError(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	err := f.store.WithinTx(ctx, func(tx Tx) error {
		room, err := tx.GetRoom(ctx, f.room.ID)
		if err != nil {
			return err
		}
		room.Status = domain.RoomMaintenance
		if err := tx.UpdateRoom(ctx, room); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t))
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	a, err := f.book(t, f.owner, jan(10), jan(12))
	require.NoError(t, err)
	_, err = f.book(t, f.other, jan(20), jan(22))
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.staff, a.ID)
	require.NoError(t, err)

	confirmed, err := f.svc.List(ctx, f.staff, ListFilter{Status: domain.BookingConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, a.ID, confirmed[0].ID)
	require.NotNil(t, confirmed[0].User)
	assert.Equal(t, "owner@example.com", confirmed[0].User.Email)

	from, to := jan(15), jan(31)
	late, err := f.svc.List(ctx, f.staff, ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, jan(20), late[0].CheckInDate)
}
