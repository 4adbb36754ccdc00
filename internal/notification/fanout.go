package notification

import (
	"context"

	"roombooking/internal/domain"
)

// Fanout delivers each event to every publisher in order.
type Fanout []domain.BookingEventPublisher

func (f Fanout) PublishBookingEvent(ctx context.Context, ev domain.BookingEvent) {
	for _, p := range f {
		if p != nil {
			p.PublishBookingEvent(ctx, ev)
		}
	}
}
