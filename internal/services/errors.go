package services

import "errors"

// Business outcomes the handlers translate into HTTP statuses. Anything
// else coming out of a service is treated as an internal failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email address already exists")
	ErrUsernameTaken      = errors.New("user name already exists")
	ErrValidation         = errors.New("invalid input")
)
