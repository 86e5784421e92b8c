package custody

import "errors"

var (
	// ErrValidation flags malformed or missing required input. Nothing is
	// persisted when it is returned.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateKey flags a unique-constraint violation (BOU, lot code).
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound flags a referenced entity that does not resolve.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidState flags an operation attempted from a custody status
	// that does not permit it.
	ErrInvalidState = errors.New("invalid custody state for operation")
	// ErrAlreadyFinalized flags a second finalization of the same lot.
	ErrAlreadyFinalized = errors.New("lot already incinerated")
	// ErrImmutableRecord flags any write against an incinerated lot or an
	// item that belongs to one.
	ErrImmutableRecord = errors.New("record is immutable after incineration")
)
