// Package minorm loads single rows into annotated Go structs by primary key.
//
//	type Person struct {
//		minorm.Entity `jorm:"table:person"`
//		ID            int64     `jorm:"pk column:id"`
//		Name          string    `jorm:"column:name"`
//		CreatedAt     time.Time `jorm:"column:created_at"`
//	}
//
//	factory, err := minorm.Open("sqlite3", "app.db", nil)
//	session, err := factory.CreateSession(ctx)
//	defer session.Close()
//	p, err := minorm.Find[Person](ctx, session, 1)
package minorm

import (
	"context"

	"github.com/shrek82/minorm/core"
	"github.com/shrek82/minorm/model"
	"github.com/shrek82/minorm/validator"
)

// Re-export core types and functions
type (
	Session        = core.Session
	SessionFactory = core.SessionFactory
	Options        = core.Options
	Option         = core.Option
	Statement      = core.Statement
	Row            = core.Row

	ConnectionError = core.ConnectionError
	ExecutionError  = core.ExecutionError
	MappingError    = core.MappingError
	FindError       = core.FindError
)

var (
	Open              = core.Open
	NewSessionFactory = core.NewSessionFactory
	WithLogger        = core.WithLogger
	WithSlowThreshold = core.WithSlowThreshold
	ContextWithFields = core.ContextWithFields
	BuildFindByID     = core.BuildFindByID

	ErrConnection    = core.ErrConnection
	ErrExecution     = core.ErrExecution
	ErrMapping       = core.ErrMapping
	ErrColumnMissing = core.ErrColumnMissing
	ErrNotCoercible  = core.ErrNotCoercible
	ErrInvalidID     = core.ErrInvalidID
)

// Re-export model types and functions
type (
	Entity        = model.Entity
	Date          = model.Date
	Model         = model.Model
	Field         = model.Field
	MetadataError = model.MetadataError
)

var (
	Resolve         = model.Resolve
	ResolveIDColumn = model.ResolveIDColumn
	DateOf          = model.DateOf
)

// RegisterFactory registers the zero-argument constructor for T.
func RegisterFactory[T any](fn func() *T) { model.RegisterFactory(fn) }

// Re-export validator types and functions
type ValidationError = validator.ValidationError

var (
	Validate                = validator.Validate
	ErrNotEntity            = validator.ErrNotEntity
	ErrMissingID            = validator.ErrMissingID
	ErrAmbiguousID          = validator.ErrAmbiguousID
	ErrNoDefaultConstructor = validator.ErrNoDefaultConstructor
)

// Find loads the T whose identifier equals id.
func Find[T any](ctx context.Context, s *Session, id any) (*T, error) {
	return core.Find[T](ctx, s, id)
}

// Lookup is like Find and also reports whether a row matched.
func Lookup[T any](ctx context.Context, s *Session, id any) (*T, bool, error) {
	return core.Lookup[T](ctx, s, id)
}
