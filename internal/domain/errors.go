package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error is a domain failure with a user-facing message and optional details
// a client can render next to the offending field.
type Error struct {
	Kind    error
	Msg     string
	Details any
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error        { return &Error{Kind: ErrValidation, Msg: msg} }
func Conflict(msg string) error          { return &Error{Kind: ErrConflict, Msg: msg} }
func Forbidden(msg string) error         { return &Error{Kind: ErrForbidden, Msg: msg} }
func InvalidTransition(msg string) error { return &Error{Kind: ErrInvalidTransition, Msg: msg} }
func NotFound(msg string) error          { return &Error{Kind: ErrNotFound, Msg: msg} }
func Unauthorized(msg string) error      { return &Error{Kind: ErrUnauthorized, Msg: msg} }

// PartyBounds is attached to party-size validation errors.
type PartyBounds struct {
	TableID uint `json:"table_id"`
	Min     int  `json:"min"`
	Max     int  `json:"max"`
}

func PartySize(tableID uint, people, min, max int) error {
	return &Error{
		Kind:    ErrValidation,
		Msg:     fmt.Sprintf("table %d accepts parties of %d to %d people, got %d", tableID, min, max, people),
		Details: PartyBounds{TableID: tableID, Min: min, Max: max},
	}
}

// DetailsOf returns the details carried by err, if any.
func DetailsOf(err error) any {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
