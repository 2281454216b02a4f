// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the request failed input validation.
var ErrValidation = errors.New("validation failed")

// ErrOrphanCompletion indicates a terminal coordination event arrived without a
// matching start event. The event is still recorded, but its duration is
// undefined and it contributes nothing to pattern learning.
var ErrOrphanCompletion = errors.New("completion without matching start")

// ErrPersistence wraps an I/O failure while durably writing engine state.
// The in-memory mutation that triggered the write has already been applied;
// callers decide whether to retry.
var ErrPersistence = errors.New("persistence failed")
