package storage

import "errors"

// Sentinel error categories for the persistence layer. Callers distinguish
// them with errors.Is; the not-found category in particular propagates
// unchanged through the service layer so "nothing to update/delete" stays
// recognizable.
var (
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
	ErrCorruptedData = errors.New("corrupted data")
	ErrInvalidFormat = errors.New("invalid format")
)
