package core

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrConnection is returned when a connection cannot be obtained or has been closed.
	ErrConnection = errors.New("connection error")
	// ErrExecution is returned when the database fails to execute a statement.
	ErrExecution = errors.New("execution error")
	// ErrMapping is returned when a row cannot be mapped onto the entity.
	ErrMapping = errors.New("mapping error")
	// ErrColumnMissing is returned when a mapped column is absent from the row.
	ErrColumnMissing = errors.New("column missing from row")
	// ErrNotCoercible is returned when a column value cannot become the field's type.
	ErrNotCoercible = errors.New("value not coercible")
	// ErrInvalidID is returned when the identifier cannot be bound.
	ErrInvalidID = errors.New("invalid id")
)

// ConnectionError wraps a failure to obtain or use the session's connection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() []error { return []error{ErrConnection, e.Err} }

// ExecutionError wraps a driver failure while running SQL.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrExecution, e.SQL, e.Err)
}

func (e *ExecutionError) Unwrap() []error { return []error{ErrExecution, e.Err} }

// MappingError identifies the field whose column could not be mapped.
type MappingError struct {
	Field  string
	Column string
	Value  any
	Err    error
}

func (e *MappingError) Error() string {
	if errors.Is(e.Err, ErrColumnMissing) {
		return fmt.Sprintf("%v: field %s: column %q missing from row", ErrMapping, e.Field, e.Column)
	}
	return fmt.Sprintf("%v: field %s (column %q, value %v of type %T): %v", ErrMapping, e.Field, e.Column, e.Value, e.Value, e.Err)
}

func (e *MappingError) Unwrap() []error { return []error{ErrMapping, e.Err} }

// FindError is returned by every failed lookup. It names the entity type and
// the requested id; the cause stays reachable through errors.Is and errors.As.
type FindError struct {
	Type reflect.Type
	ID   any
	Err  error
}

func (e *FindError) Error() string {
	return fmt.Sprintf("find %v with id %v: %v", e.Type, e.ID, e.Err)
}

func (e *FindError) Unwrap() error { return e.Err }
