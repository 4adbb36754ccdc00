package domain

import (
	"context"
	"time"
)

type BookingEventType string

const (
	EventBookingCreated           BookingEventType = "booking.created"
	EventBookingConfirmed         BookingEventType = "booking.confirmed"
	EventBookingCheckedIn         BookingEventType = "booking.checked_in"
	EventBookingCheckedOut        BookingEventType = "booking.checked_out"
	EventBookingCancelled         BookingEventType = "booking.cancelled"
	EventBookingPostponeRequested BookingEventType = "booking.postpone_requested"
	EventBookingPostponeApproved  BookingEventType = "booking.postpone_approved"
	EventBookingPostponeRejected  BookingEventType = "booking.postpone_rejected"
	EventBookingDiscountAdjusted  BookingEventType = "booking.discount_adjusted"
)

// BookingEvent is emitted after a lifecycle transition commits.
type BookingEvent struct {
	Type         BookingEventType `json:"type"`
	BookingID    int64            `json:"booking_id"`
	RoomID       int64            `json:"room_id"`
	UserID       int64            `json:"user_id"`
	Status       BookingStatus    `json:"status"`
	CheckInDate  time.Time        `json:"check_in_date"`
	CheckOutDate time.Time        `json:"check_out_date"`
	Reason       string           `json:"reason,omitempty"`
	At           time.Time        `json:"at"`
}

// NewBookingEvent snapshots b after a transition.
func NewBookingEvent(t BookingEventType, b *Booking, at time.Time) BookingEvent {
	ev := BookingEvent{
		Type:         t,
		BookingID:    b.ID,
		RoomID:       b.RoomID,
		UserID:       b.UserID,
		Status:       b.Status,
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		At:           at,
	}
	switch t {
	case EventBookingCancelled:
		ev.Reason = b.CancellationReason
	case EventBookingPostponeRequested:
		ev.Reason = b.PostponeReason
	}
	return ev
}

// BookingEventPublisher must not fail the transition that produced the event.
type BookingEventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev BookingEvent)
}
