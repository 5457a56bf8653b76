package bccr

import (
	"errors"
	"fmt"
)

// ErrNoTable is returned when no candidate table in the response
// resembles the ventanilla schema
var ErrNoTable = errors.New("no exchange rate table found in response")

var errInvalidDateRange = errors.New("start date is after end date")

// DetectionError flags a logical form role that could not be resolved
// to a concrete input name. The caller can recover by supplying an
// explicit override for the named role
type DetectionError struct {
	Role FieldRole
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf(
		"unable to detect the %s field, supply its name explicitly",
		e.Role,
	)
}

// TransportError wraps a network-level failure from the underlying client
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unable to %s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SubmissionError flags a non-success HTTP status from the target site
type SubmissionError struct {
	StatusCode int
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("invalid status code received: %d", e.StatusCode)
}

// MalformedRowError flags a data row whose cell count does not match
// the header row of the selected table
type MalformedRowError struct {
	Row   int // 1-based data row index within the selected table
	Cells int
	Want  int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf(
		"malformed table row %d: %d cells, header has %d",
		e.Row,
		e.Cells,
		e.Want,
	)
}
