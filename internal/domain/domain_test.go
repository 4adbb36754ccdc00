package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(date(2024, 1, 10), date(2024, 1, 13)))
	assert.Equal(t, 1, Nights(time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)))
	// через конец февраля високосного года
	assert.Equal(t, 2, Nights(date(2024, 2, 28), date(2024, 3, 1)))
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 5, 7, 18, 45, 12, 0, time.UTC)
	assert.Equal(t, date(2024, 5, 7), DateOnly(in))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 10.13, RoundMoney(10.125000001))
	assert.Equal(t, 99.99, RoundMoney(3*33.33))
	assert.Equal(t, 0.0, RoundMoney(0.004))
}

func TestUtilityBill(t *testing.T) {
	assert.Equal(t, 100.0, UtilityBill(100, 150, 2))
	assert.Equal(t, 0.0, UtilityBill(150, 100, 2))
	assert.Equal(t, 0.0, UtilityBill(150, 150, 2))
	assert.Equal(t, 6.3, UtilityBill(10, 12.1, 3))
}

func TestMonthlyRental_Recalculate(t *testing.T) {
	r := &MonthlyRental{
		PreviousWaterReading: 10, CurrentWaterReading: 25, WaterUnitPrice: 1.5,
		PreviousElectricityReading: 200, CurrentElectricityReading: 180, ElectricityUnitPrice: 0.2,
		WaterBill: 999, ElectricityBill: 999,
	}
	r.Recalculate()

	assert.Equal(t, 22.5, r.WaterBill)
	assert.Equal(t, 0.0, r.ElectricityBill)
	assert.Equal(t, 22.5, r.TotalBill())
	assert.Equal(t, 15.0, r.WaterUsage())
}

func TestPromotion_DiscountFor(t *testing.T) {
	pct, amt, huge := 10.0, 25.0, 1000.0

	assert.Equal(t, 0.0, (*Promotion)(nil).DiscountFor(150))
	assert.Equal(t, 15.0, (&Promotion{DiscountPercentage: &pct}).DiscountFor(150))
	assert.Equal(t, 25.0, (&Promotion{DiscountAmount: &amt}).DiscountFor(150))
	assert.Equal(t, 15.0, (&Promotion{DiscountPercentage: &pct, DiscountAmount: &amt}).DiscountFor(150))
	assert.Equal(t, 150.0, (&Promotion{DiscountAmount: &huge}).DiscountFor(150))
	assert.Equal(t, 0.0, (&Promotion{}).DiscountFor(150))
}

func TestBooking_ApplyAmounts(t *testing.T) {
	var b Booking
	b.ApplyAmounts(150, 15.556)

	assert.Equal(t, 150.0, b.TotalAmount)
	assert.Equal(t, 15.56, b.DiscountAmount)
	assert.Equal(t, 134.44, b.FinalAmount)
}

func TestBooking_Overlaps(t *testing.T) {
	b := Booking{CheckInDate: date(2024, 1, 10), CheckOutDate: date(2024, 1, 15)}

	assert.True(t, b.Overlaps(date(2024, 1, 12), date(2024, 1, 20)))
	assert.True(t, b.Overlaps(date(2024, 1, 1), date(2024, 1, 11)))
	assert.True(t, b.Overlaps(date(2024, 1, 11), date(2024, 1, 12)))
	assert.False(t, b.Overlaps(date(2024, 1, 15), date(2024, 1, 20)))
	assert.False(t, b.Overlaps(date(2024, 1, 5), date(2024, 1, 10)))
}

func TestBooking_ClearPostpone(t *testing.T) {
	in, out, at := date(2024, 2, 1), date(2024, 2, 3), time.Now()
	b := Booking{NewCheckInDate: &in, NewCheckOutDate: &out, PostponeRequestedAt: &at, PostponeReason: "x"}
	b.ClearPostpone()

	assert.Nil(t, b.NewCheckInDate)
	assert.Nil(t, b.NewCheckOutDate)
	assert.Nil(t, b.PostponeRequestedAt)
	assert.Empty(t, b.PostponeReason)
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	assert.True(t, BookingCheckedOut.IsTerminal())
	assert.True(t, BookingCancelled.IsTerminal())
	assert.False(t, BookingPending.IsTerminal())
	assert.False(t, BookingPostponeRequested.IsTerminal())
}

func TestErrors(t *testing.T) {
	nf := fmt.Errorf("load: %w", NotFound("room", 7))
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Equal(t, "load: room 7 not found", nf.Error())

	var typed *NotFoundError
	assert.True(t, errors.As(nf, &typed))
	assert.Equal(t, "room", typed.Entity)

	assert.True(t, errors.Is(ErrRoomUnavailable, ErrValidation))
	assert.False(t, errors.Is(Invalid("x"), ErrNotFound))
}

func TestNewBookingEvent(t *testing.T) {
	at := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	b := &Booking{ID: 4, RoomID: 2, UserID: 9, Status: BookingCancelled, CancellationReason: "sick"}

	ev := NewBookingEvent(EventBookingCancelled, b, at)
	assert.Equal(t, int64(4), ev.BookingID)
	assert.Equal(t, "sick", ev.Reason)
	assert.Equal(t, at, ev.At)

	ev = NewBookingEvent(EventBookingConfirmed, b, at)
	assert.Empty(t, ev.Reason)
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ann Lee", (&User{FirstName: "Ann", LastName: "Lee"}).FullName())
	assert.Equal(t, "Lee", (&User{LastName: "Lee"}).FullName())
	assert.True(t, RoleAdmin.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
}
