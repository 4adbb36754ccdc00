package domain

import "time"

type BookingType string

const (
	BookingDaily   BookingType = "daily"
	BookingMonthly BookingType = "monthly"
)

func (t BookingType) Valid() bool {
	return t == BookingDaily || t == BookingMonthly
}

type BookingStatus string

const (
	BookingPending           BookingStatus = "pending"
	BookingConfirmed         BookingStatus = "confirmed"
	BookingCheckedIn         BookingStatus = "checked_in"
	BookingCheckedOut        BookingStatus = "checked_out"
	BookingCancelled         BookingStatus = "cancelled"
	BookingPostponeRequested BookingStatus = "postpone_requested"
)

// IsTerminal reports whether no transition may leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCheckedOut || s == BookingCancelled
}

type Booking struct {
	ID             int64         `json:"id" gorm:"primaryKey"`
	UserID         int64         `json:"user_id" gorm:"not null;index"`
	RoomID         int64         `json:"room_id" gorm:"not null;index:idx_bookings_room_dates,priority:1"`
	BookingType    BookingType   `json:"booking_type" gorm:"size:20;not null"`
	CheckInDate    time.Time     `json:"check_in_date" gorm:"not null;index:idx_bookings_room_dates,priority:2"`
	CheckOutDate   time.Time     `json:"check_out_date" gorm:"not null;index:idx_bookings_room_dates,priority:3"`
	NumberOfGuests int           `json:"number_of_guests" gorm:"not null"`
	TotalAmount    float64       `json:"total_amount" gorm:"not null"`
	DiscountAmount float64       `json:"discount_amount" gorm:"not null"`
	FinalAmount    float64       `json:"final_amount" gorm:"not null"`
	Status         BookingStatus `json:"status" gorm:"size:30;not null;index"`

	SpecialRequests    string `json:"special_requests,omitempty" gorm:"type:text"`
	PromoCode          string `json:"promo_code,omitempty" gorm:"size:50"`
	CancellationReason string `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Перенос: предложенные даты живут отдельно от активных до одобрения
	PostponeRequestedAt *time.Time `json:"postpone_requested_at,omitempty"`
	NewCheckInDate      *time.Time `json:"new_check_in_date,omitempty"`
	NewCheckOutDate     *time.Time `json:"new_check_out_date,omitempty"`
	PostponeReason      string     `json:"postpone_reason,omitempty" gorm:"type:text"`

	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	Version   int64     `json:"version" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:RESTRICT"`
}

// ApplyAmounts sets the monetary fields keeping final = total - discount.
func (b *Booking) ApplyAmounts(total, discount float64) {
	b.TotalAmount = RoundMoney(total)
	b.DiscountAmount = RoundMoney(discount)
	b.FinalAmount = RoundMoney(b.TotalAmount - b.DiscountAmount)
}

func (b *Booking) ClearPostpone() {
	b.PostponeRequestedAt = nil
	b.NewCheckInDate = nil
	b.NewCheckOutDate = nil
	b.PostponeReason = ""
}

// Overlaps reports whether [in, out) intersects the booking's active interval.
func (b *Booking) Overlaps(in, out time.Time) bool {
	return b.CheckInDate.Before(out) && b.CheckOutDate.After(in)
}
