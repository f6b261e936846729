package market

import (
	"errors"
	"fmt"
)

// Error taxonomy. Services wrap these with context; the HTTP layer maps them
// to status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrOwnership    = errors.New("caller does not own this resource")
	ErrInvariant    = errors.New("invariant violated")
	ErrVerification = errors.New("external verification failed")
	ErrStore        = errors.New("store failure")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Ownershipf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrOwnership)...)
}

func Invariantf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvariant)...)
}
