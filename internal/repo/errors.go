package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect/sql/sqlgraph"
)

var ErrDuplicate = errors.New("duplicate key")

// NotFoundError returns when trying to fetch a specific row and it was not found.
type NotFoundError struct {
	label string
}

func (e *NotFoundError) Error() string {
	return "repo: " + e.label + " not found"
}

// IsNotFound returns a boolean indicating whether the error is a not found error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e)
}

func notFound(label string) error { return &NotFoundError{label: label} }

// classify turns driver errors into repo errors. sql.ErrNoRows becomes a
// NotFoundError for label; unique violations wrap ErrDuplicate.
func classify(label string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound(label)
	case sqlgraph.IsUniqueConstraintError(err):
		return fmt.Errorf("%s: %w: %v", label, ErrDuplicate, err)
	}
	return err
}
