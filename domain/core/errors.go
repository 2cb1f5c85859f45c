package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input / registry load errors (hard failures, never repaired)
	ErrInputMissing       = errors.New("input file missing")
	ErrInputMalformed     = errors.New("input file malformed")
	ErrRegistryIncomplete = errors.New("registry incomplete")
	ErrMethodNotFound     = errors.New("method not found in catalog")

	// Invariant violations
	ErrCoherenceViolation  = errors.New("phase/level coherence violation")
	ErrInvalidQuestionID   = errors.New("invalid question id")
	ErrInvalidContractID   = errors.New("invalid contract id")
	ErrDimensionOutOfRange = errors.New("dimension out of range")
	ErrUnknownContractType = errors.New("unknown contract type")

	// Assembly / emission errors
	ErrAssemblyFailed  = errors.New("contract assembly failed")
	ErrContractInvalid = errors.New("contract failed critical validation")
)

// NewValidationError builds a field-scoped validation error.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// NewLoadError wraps a hard input failure with the offending file.
func NewLoadError(file string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInputMalformed, file, err)
}

// IsHardFailure reports whether err is one of the load/compose failures that
// must abort the affected unit instead of being repaired.
func IsHardFailure(err error) bool {
	return errors.Is(err, ErrInputMissing) ||
		errors.Is(err, ErrInputMalformed) ||
		errors.Is(err, ErrRegistryIncomplete) ||
		errors.Is(err, ErrMethodNotFound) ||
		errors.Is(err, ErrCoherenceViolation) ||
		errors.Is(err, ErrInvalidQuestionID) ||
		errors.Is(err, ErrInvalidContractID) ||
		errors.Is(err, ErrDimensionOutOfRange) ||
		errors.Is(err, ErrUnknownContractType)
}

// IsEmissionRefusal reports whether err came from refusing to write an
// invalid contract.
func IsEmissionRefusal(err error) bool {
	return errors.Is(err, ErrContractInvalid)
}
