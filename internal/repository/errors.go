package repository

import "errors"

// ErrConditionFailed is returned when a conditional write's precondition
// did not hold (zero rows matched). Callers interpret it semantically:
// quota reached, insufficient tokens, gift already used.
var ErrConditionFailed = errors.New("conditional check failed")

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert hits a unique index, typically
// after losing a check-then-create race.
var ErrDuplicate = errors.New("record already exists")

// Upload-token reservation failures, classified after the conditional
// append is rejected.
var (
	ErrUploadLimit     = errors.New("photo limit reached")
	ErrUploadDuplicate = errors.New("file already reserved")
)
