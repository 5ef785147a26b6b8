package repository

import "errors"

// ErrRecordNotFound is returned when a time record id matches no row.
var ErrRecordNotFound = errors.New("record not found")
