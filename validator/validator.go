// Package validator checks that a Go type can be used as a mapped entity.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/shrek82/minorm/model"
)

var (
	ErrNotEntity            = errors.New("not an entity")
	ErrMissingID            = errors.New("missing id")
	ErrAmbiguousID          = errors.New("ambiguous id")
	ErrNoDefaultConstructor = errors.New("no default constructor")
)

// ValidationError reports the first precondition typ failed.
type ValidationError struct {
	Type   reflect.Type
	Reason error // one of the Err* sentinels above
	Cause  error // resolver error, if any
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid entity %v: %v (%v)", e.Type, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid entity %v: %v", e.Type, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Reason, e.Cause}
	}
	return []error{e.Reason}
}

// check is one precondition; it returns nil when typ satisfies it.
type check func(typ reflect.Type) *ValidationError

var checks = []check{
	checkEntity,
	checkID,
	checkConstructor,
}

var valid sync.Map // reflect.Type -> struct{}

// Validate confirms typ is usable as an entity. Pointer types are checked by
// their element type. The first failing check is reported.
func Validate(typ reflect.Type) error {
	if typ == nil {
		return &ValidationError{Reason: ErrNotEntity}
	}
	typ = model.Indirect(typ)
	if _, ok := valid.Load(typ); ok {
		return nil
	}

	for _, c := range checks {
		if err := c(typ); err != nil {
			return err
		}
	}

	valid.Store(typ, struct{}{})
	return nil
}

func checkEntity(typ reflect.Type) *ValidationError {
	if !model.IsEntity(typ) {
		return &ValidationError{Type: typ, Reason: ErrNotEntity}
	}
	return nil
}

func checkID(typ reflect.Type) *ValidationError {
	_, err := model.Resolve(typ)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrMissingID):
		return &ValidationError{Type: typ, Reason: ErrMissingID, Cause: err}
	case errors.Is(err, model.ErrAmbiguousID):
		return &ValidationError{Type: typ, Reason: ErrAmbiguousID, Cause: err}
	}
	return &ValidationError{Type: typ, Reason: ErrNotEntity, Cause: err}
}

func checkConstructor(typ reflect.Type) *ValidationError {
	if _, ok := model.FactoryFor(typ); !ok {
		return &ValidationError{Type: typ, Reason: ErrNoDefaultConstructor}
	}
	return nil
}
