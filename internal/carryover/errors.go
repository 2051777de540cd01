package carryover

import "errors"

var (
	// ErrInvalidArgument covers out-of-range periods, empty titles,
	// from == to on quarter moves, and adhoc nesting past the depth limit.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState means a computed path failed structural validation.
	// It is a defensive assertion: seeing it implies a corrupted tree.
	ErrInvalidState = errors.New("invalid state")
)
