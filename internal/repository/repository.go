package repository

import "errors"

var (
	// ErrVersionConflict is returned when a row changed since it was read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrCartEmpty is returned when checkout finds no lines under the cart lock.
	ErrCartEmpty = errors.New("cart empty")

	// ErrCartChanged is returned when the locked cart no longer matches the order being placed.
	ErrCartChanged = errors.New("cart changed")
)
