package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrSkipRow          = errors.New("row skipped")
	ErrMissingReference = errors.New("missing reference")
)
