package ratetable

import "errors"

var (
	ErrInvalidTable = errors.New("invalid rate table")
	ErrNotFound     = errors.New("rate table not found")
)
