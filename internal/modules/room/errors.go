package room

import "roombooking/internal/domain"

var (
	ErrInvalidDateRange    = domain.Invalid("'to' date must be after 'from' date")
	ErrInvalidStatus       = domain.Invalid("room status must be available, maintenance or reserved")
	ErrStatusManagedByStay = domain.Invalid("occupied rooms change status through check-in and check-out")
)
