package booking

import "roombooking/internal/domain"

var (
	ErrInvalidDateRange        = domain.Invalid("check-out date must be after check-in date")
	ErrInvalidGuests           = domain.Invalid("number of guests must be at least 1")
	ErrCapacityExceeded        = domain.Invalid("number of guests exceeds room capacity")
	ErrRoomInactive            = domain.Invalid("room is not available for booking")
	ErrInvalidBookingType      = domain.Invalid("booking type must be daily or monthly")
	ErrInvalidStatusTransition = domain.Invalid("invalid status transition")
	ErrPostponeNotRequested    = domain.Invalid("no postponement dates to approve")
	ErrInvalidDiscount         = domain.Invalid("discount must be between 0 and the total amount")
	ErrInvalidPromoCode        = domain.Invalid("promo code is invalid or expired")

	ErrRoomUnavailable = domain.ErrRoomUnavailable
)
