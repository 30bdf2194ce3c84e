package domain

import "errors"

// Sentinel errors. Handlers map these to HTTP codes; services wrap them with
// context via fmt.Errorf("...: %w", err).
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyFinal        = errors.New("payment already in a terminal state")
	ErrInventoryExhausted  = errors.New("ticket tier sold out")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrTransient           = errors.New("transient gateway error")
)
