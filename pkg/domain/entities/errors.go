package entities

import (
	"errors"
	"fmt"
)

// ErrMissingIdentifier marks a record that lacks a required identifier
var ErrMissingIdentifier = errors.New("missing required identifier")

// ValidationError describes why a single record was rejected
type ValidationError struct {
	Row    int
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RejectedRecord is a raw line that was dropped during normalization
type RejectedRecord struct {
	Row    int                `json:"row"`
	Line   RawRequisitionLine `json:"-"`
	Reason string             `json:"reason"`
	Err    *ValidationError   `json:"-"`
}
