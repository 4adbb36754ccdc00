package auth

import (
	"errors"

	"roombooking/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = domain.Invalid("email already exists")
	ErrAccountDisabled    = errors.New("account is disabled")
)
