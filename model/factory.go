package model

import (
	"reflect"
	"sync"
)

var factories sync.Map // reflect.Type -> func() any

// RegisterFactory registers the zero-argument constructor used to create
// instances of T. Structs whose marker carries `jorm:"factory"` need one.
func RegisterFactory[T any](fn func() *T) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	factories.Store(typ, func() any { return fn() })
}

// FactoryFor returns the zero-argument constructor for typ. Struct types
// without a registered factory use their zero value unless they require one.
func FactoryFor(typ reflect.Type) (func() any, bool) {
	typ = Indirect(typ)
	if typ == nil {
		return nil, false
	}
	if fn, ok := factories.Load(typ); ok {
		return fn.(func() any), true
	}
	if typ.Kind() != reflect.Struct {
		return nil, false
	}
	if sf, ok := marker(typ); ok && ParseTag(sf.Tag.Get(TagKey)).Factory {
		return nil, false
	}
	return func() any { return reflect.New(typ).Interface() }, true
}

// New creates an empty instance of m's type and returns a pointer to it.
func (m *Model) New() (reflect.Value, bool) {
	fn, ok := FactoryFor(m.Type)
	if !ok {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(fn())
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, false
	}
	return v, true
}
