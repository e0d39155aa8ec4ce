package query

import "errors"

var (
	ErrEmptyBatch          = errors.New("insert without rows")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrInvalidCondition    = errors.New("invalid condition")
	ErrEmptyProjection     = errors.New("empty column projection")
	ErrNoAssignments       = errors.New("update without assignments")
	ErrInvalidLimit        = errors.New("invalid limit")
	ErrColumnCount         = errors.New("column and value counts differ")
	ErrMissingTable        = errors.New("missing table name")
)
