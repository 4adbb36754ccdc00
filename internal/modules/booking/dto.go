package booking

import (
	"time"

	"roombooking/internal/domain"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	RoomID          int64              `json:"room_id" binding:"required"`
	BookingType     domain.BookingType `json:"booking_type"`
	CheckInDate     string             `json:"check_in_date" binding:"required,datetime=2006-01-02"`
	CheckOutDate    string             `json:"check_out_date" binding:"required,datetime=2006-01-02"`
	NumberOfGuests  int                `json:"number_of_guests" binding:"required"`
	SpecialRequests string             `json:"special_requests" binding:"max=1000"`
	PromoCode       string             `json:"promo_code" binding:"max=50"`
}

type PostponeRequest struct {
	NewCheckInDate  string `json:"new_check_in_date" binding:"required,datetime=2006-01-02"`
	NewCheckOutDate string `json:"new_check_out_date" binding:"required,datetime=2006-01-02"`
	Reason          string `json:"reason" binding:"max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type DiscountRequest struct {
	DiscountAmount *float64 `json:"discount_amount" binding:"required"`
}

// CreateBookingInput is the parsed form of CreateBookingRequest.
type CreateBookingInput struct {
	RoomID          int64
	BookingType     domain.BookingType
	CheckInDate     time.Time
	CheckOutDate    time.Time
	NumberOfGuests  int
	SpecialRequests string
	PromoCode       string
}

type ListFilter struct {
	Status domain.BookingStatus
	RoomID int64
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func (r CreateBookingRequest) toInput() (CreateBookingInput, error) {
	in, out, err := parseDates(r.CheckInDate, r.CheckOutDate)
	if err != nil {
		return CreateBookingInput{}, err
	}
	return CreateBookingInput{
		RoomID:          r.RoomID,
		BookingType:     r.BookingType,
		CheckInDate:     in,
		CheckOutDate:    out,
		NumberOfGuests:  r.NumberOfGuests,
		SpecialRequests: r.SpecialRequests,
		PromoCode:       r.PromoCode,
	}, nil
}

func parseDates(inStr, outStr string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, inStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	out, err := time.Parse(dateLayout, outStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return in, out, nil
}
