package evo

import "errors"

var (
	// ErrContractViolation reports a structural breach between the engine
	// and its operators: empty inputs, mismatched lengths, invalid operator
	// parameters, or a childless parent pair.
	ErrContractViolation = errors.New("contract violation")

	// ErrNonComparableFitness reports a NaN fitness value, which would
	// silently corrupt selection ordering.
	ErrNonComparableFitness = errors.New("non-comparable fitness")

	// ErrMissingGenerator reports that an initial population was needed but
	// no Generator was configured.
	ErrMissingGenerator = errors.New("missing generator")
)
