package payment

import "roombooking/internal/domain"

var (
	ErrInvalidPaymentStatus = domain.Invalid("payment is not in a state that allows this action")
	ErrMethodUnavailable    = domain.Invalid("payment method is not available")
	ErrBookingCancelled     = domain.Invalid("cannot pay for a cancelled booking")
	ErrNothingToPay         = domain.Invalid("booking has nothing to pay")
)
