package proximity

import "errors"

// Sentinel kinds for proximity errors.
var (
	ErrUnknownPolicy = errors.New("unknown proximity policy")
)
