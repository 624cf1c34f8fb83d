package repositories

import "errors"

// ErrNotFound reports that a requested record does not exist. Callers match it
// with errors.Is instead of inspecting error text.
var ErrNotFound = errors.New("record not found")
