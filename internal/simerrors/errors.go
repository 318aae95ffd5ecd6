// Package simerrors defines the sentinel error taxonomy shared by the
// converter, stream keeper, recalculation graph, and engine.
// Callers use errors.Is against these sentinels; the wrapped message carries
// the offending units, scope, or identifier.
package simerrors

import "errors"

var (
	// ErrScopeMissing is returned when an operation needs an application
	// or substance scope that has not been set on the engine.
	ErrScopeMissing = errors.New("simerrors: required scope is not set")

	// ErrUnsupportedUnits is returned when a unit string names a unit the
	// converter has no rule for at all (not merely incompatible with the
	// current conversion).
	ErrUnsupportedUnits = errors.New("simerrors: unsupported units")

	// ErrIncompatibleUnits is returned when the converter has no rule
	// between two recognized units (e.g. converting years to kg).
	ErrIncompatibleUnits = errors.New("simerrors: incompatible units for conversion")

	// ErrScenarioNotFound is returned when a named scenario has no
	// registered definition.
	ErrScenarioNotFound = errors.New("simerrors: scenario not found")

	// ErrPolicyNotFound is returned when a named policy is referenced by a
	// scenario but never defined.
	ErrPolicyNotFound = errors.New("simerrors: policy not found")

	// ErrZeroDenominatorUnrecoverable is returned when a ratio conversion's
	// denominator total is zero and no static scale could be inferred
	// between the original denominator units.
	ErrZeroDenominatorUnrecoverable = errors.New("simerrors: zero denominator with no recoverable scale")

	// ErrValidation is returned when a command or configuration value
	// fails a structural check (e.g. a negative enabled-year range).
	ErrValidation = errors.New("simerrors: validation error")
)
