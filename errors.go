package appsize

import "errors"

const Namespace = "appsize"

var (
	ErrInvalidState  = errors.New(Namespace + ": batch has already been run")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrNoResults     = errors.New(Namespace + ": no item was measured successfully")
	ErrCancelled     = errors.New(Namespace + ": batch cancelled")

	ErrMeasurementFailed    = errors.New(Namespace + ": measurement failed")
	ErrMeasurementCancelled = errors.New(Namespace + ": measurement cancelled")
	ErrMeasurementPanicked  = errors.New(Namespace + ": measurement panicked")
)
