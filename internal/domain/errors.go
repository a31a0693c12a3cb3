package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotApproved       = errors.New("not approved")
	ErrNotFound          = errors.New("not found")
	ErrInvalidExpiry     = errors.New("invalid expiry")
	ErrNotTemporaryAdmin = errors.New("not a temporary admin")
	ErrNotAdmin          = errors.New("not an admin")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("resource conflict")
)
