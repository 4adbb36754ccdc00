package rental

import "roombooking/internal/domain"

var (
	ErrNotMonthlyStay       = domain.Invalid("utility bills are kept only for monthly bookings")
	ErrBookingNotCheckedIn  = domain.Invalid("guest must be checked in before billing starts")
	ErrRentalExists         = domain.Invalid("booking already has a monthly rental")
	ErrInvalidBillingPeriod = domain.Invalid("billing period end must be after its start")
	ErrNegativeValue        = domain.Invalid("readings and unit prices must not be negative")
	ErrAlreadyPaid          = domain.Invalid("rental is already paid")
)
