package domain

import "errors"

// Sentinel errors defining the failure taxonomy of the API.
// Services wrap these with context; handlers map them to 409, 401, 403, 404
// or 400 without inspecting infrastructure errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)
