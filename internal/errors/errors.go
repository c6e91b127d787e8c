package appErrors

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input that cannot be accepted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ReferenceError reports an id that no longer resolves.
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

func NewTemplateNotFound(id string) error {
	return &ReferenceError{Kind: "template", ID: id}
}

func NewScheduleNotFound(id string) error {
	return &ReferenceError{Kind: "schedule", ID: id}
}

func NewMemberNotFound(id string) error {
	return &ReferenceError{Kind: "member", ID: id}
}

// ExternalServiceError wraps a failure of a collaborator outside this process.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewExternalService(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

// PersistenceReadError reports a stored collection that could not be parsed.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("collection %s unreadable: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsReference(err error) bool {
	var target *ReferenceError
	return errors.As(err, &target)
}

func IsExternalService(err error) bool {
	var target *ExternalServiceError
	return errors.As(err, &target)
}
