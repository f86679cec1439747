// Package internalerr defines the sentinel errors shared across the zrank
// core. Call sites wrap them with fmt.Errorf("...: %w", ...) and callers
// discriminate with errors.Is.
package internalerr

import "errors"

// Sentinel errors for the error kinds of the core contract.
var (
	// ErrInput marks a malformed knowledge base or query: bad grammar,
	// a signature-restriction violation (arity > 1, >1 free variable
	// per conditional, an open fact, multiple sorts).
	ErrInput = errors.New("invalid input")

	// ErrCapacity marks a world-set allocation that exceeded the
	// configured memory ceiling.
	ErrCapacity = errors.New("world set exceeds capacity")

	// ErrCancelled marks an abort requested through a progress sink.
	ErrCancelled = errors.New("search cancelled")

	// ErrInternalInvariant marks a reached-the-unreachable bug, such as
	// an unsupported formula variant inside satisfaction. Never
	// swallowed.
	ErrInternalInvariant = errors.New("internal invariant violated")

	// ErrNoValidTolerancePair is returned by BuildRanking when asked to
	// build from an empty or invalid tolerance pair. InconsistentKB
	// itself is not an error (searchTolerancePairs just returns an
	// empty list); this sentinel only fires when a caller tries to use
	// that empty result to build a ranking anyway.
	ErrNoValidTolerancePair = errors.New("no valid tolerance pair")
)
