package models

import "fmt"

// ValidationError marks a record that was rejected at the store boundary.
// Malformed records are skipped and logged, never coerced.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}
