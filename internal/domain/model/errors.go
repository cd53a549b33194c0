package model

import "errors"

// Sentinel error kinds of a ranking run. These allow errors.Is from callers.
var (
	// ErrEmptyTrajectoryInput means no day anchors can be computed.
	ErrEmptyTrajectoryInput = errors.New("empty trajectory input")
	// ErrEmptyResultSet means no observation survived the filters.
	ErrEmptyResultSet = errors.New("empty result set")
	// ErrDegenerateScoringInput means normalization would divide by zero.
	ErrDegenerateScoringInput = errors.New("degenerate scoring input")
	// ErrInvalidParameters covers non-positive or non-finite run parameters.
	ErrInvalidParameters = errors.New("invalid ranking parameters")
)
