package spatial

import "errors"

// Sentinel kinds for spatial errors.
var (
	ErrInvalidRadius = errors.New("buffer radius must be positive and finite")
)
