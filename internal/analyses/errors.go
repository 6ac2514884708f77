package analyses

import "errors"

var (
	// ErrInvalidInput marks uploads rejected before the pipeline runs.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrInsufficientText is returned by the AI path when too little text was recovered for a prompt.
	ErrInsufficientText = errors.New("insufficient text for AI analysis")
)

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeNotFound   = "not_found"
	ErrorCodeInternal   = "internal_error"
)
