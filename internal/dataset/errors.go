package dataset

import "errors"

var (
	// ErrDataUnavailable indicates the source file is missing or unreadable.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrSchemaMismatch indicates required columns are absent or values do not fit the schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
)
