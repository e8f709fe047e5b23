package book

import "errors"

// ErrInvalidInput marks a caller contract violation (non-positive bucket
// size, negative price or size). Sparse-but-well-formed market data never
// triggers it.
var ErrInvalidInput = errors.New("invalid order book input")
