package object

import (
	"errors"
	"fmt"

	"scryfall/internal/record"
)

// Error is an API error payload. It is an ordinary outcome of any
// request and must be checked before trusting the rest of a response.
type Error struct {
	rec record.Record

	Status   int      // HTTP status echoed by the API, -1 if absent
	Code     string   // machine-readable code, e.g. "not_found"
	Details  string   // human-readable explanation
	Type     string   // optional sub-type, e.g. "ambiguous"
	Warnings []string // non-fatal warnings, never nil
}

// NewError builds an Error from rec. It never fails, whatever the shape
// of the individual fields.
func NewError(rec record.Record) *Error {
	return &Error{
		rec:      rec,
		Status:   rec.Int("status"),
		Code:     rec.String("code"),
		Details:  rec.String("details"),
		Type:     rec.String("type"),
		Warnings: record.Strings(rec, "warnings"),
	}
}

func (e *Error) Kind() Kind            { return KindError }
func (e *Error) Record() record.Record { return e.rec }

func (e *Error) Error() string {
	msg := fmt.Sprintf("scryfall %d %s", e.Status, e.Code)
	if e.Type != "" {
		msg += " (" + e.Type + ")"
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// AsError reports whether obj is an error payload.
func AsError(obj Object) (*Error, bool) {
	e, ok := obj.(*Error)
	return e, ok
}

// IsNotFound reports whether err carries a 404 error payload.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == 404 || e.Code == "not_found")
}
