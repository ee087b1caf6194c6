package model

import "errors"

// NotFoundError reports that a referenced entity does not exist. Kind is the
// entity kind ("customer", "doctor", "schedule").
type NotFoundError struct {
	Kind string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}

// ConflictError reports a uniqueness violation (duplicate email, or a doctor
// already booked at the requested instant).
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// ValidationError reports input that is structurally valid but semantically
// invalid (past date, missing field, malformed id).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
