package service

import "errors"

var (
	ErrValidation         = errors.New("invalid input")
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCapacityExceeded   = errors.New("tickets sold out or requested quantity unavailable")
	ErrBusy               = errors.New("inventory busy, please retry")
)
