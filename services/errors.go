package services

import "errors"

// Service errors the HTTP layer maps onto status codes. Everything not
// matching one of these is a storage or programming failure and surfaces
// as a 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
