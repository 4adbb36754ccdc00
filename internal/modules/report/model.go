package report

import (
	"time"

	"roombooking/internal/domain"
)

// BookingRow is one line of the booking report.
type BookingRow struct {
	ID        int64
	RoomName  string
	GuestName string
	CheckIn   time.Time
	CheckOut  time.Time
	Status    domain.BookingStatus
	Amount    float64
}

type BookingReport struct {
	From  time.Time
	To    time.Time
	Rows  []BookingRow
	Total float64
}

type StatusCount struct {
	Status domain.BookingStatus
	Count  int
}

type MonthlyReport struct {
	Month         time.Time
	From          time.Time
	To            time.Time
	TotalBookings int
	Revenue       float64
	AverageValue  float64
	ByStatus      []StatusCount
}

type UtilityRow struct {
	RoomName         string
	TenantName       string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	WaterUsage       float64
	ElectricityUsage float64
	WaterBill        float64
	ElectricityBill  float64
	PaymentStatus    domain.PaymentStatus
}

type UtilitiesReport struct {
	From             time.Time
	To               time.Time
	Rows             []UtilityRow
	TotalWater       float64
	TotalElectricity float64
}

type Dashboard struct {
	ActiveRooms     int64   `json:"active_rooms"`
	AvailableRooms  int64   `json:"available_rooms"`
	TotalBookings   int64   `json:"total_bookings"`
	PendingBookings int64   `json:"pending_bookings"`
	TodayCheckIns   int64   `json:"today_check_ins"`
	TodayCheckOuts  int64   `json:"today_check_outs"`
	MonthRevenue    float64 `json:"month_revenue"`
}

// statusOrder fixes the order of the status summary.
var statusOrder = []domain.BookingStatus{
	domain.BookingPending,
	domain.BookingConfirmed,
	domain.BookingPostponeRequested,
	domain.BookingCheckedIn,
	domain.BookingCheckedOut,
	domain.BookingCancelled,
}
