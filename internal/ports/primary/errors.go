// Package primary defines the primary ports (driving interfaces) for the
// application: the service contracts and domain DTOs consumed by the CLI,
// the gateway, and the monitor.
package primary

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing entity. All command-style operations use
// this uniformly; lookup-style finders return (nil, nil) instead.
type NotFoundError struct {
	Kind string // "organization", "team", "sprint", "work item", "delegation", "review", "escalation"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFound constructs a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
