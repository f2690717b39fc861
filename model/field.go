package model

import (
	"database/sql"
	"reflect"
	"time"
)

// Kind is the semantic type of a mapped field.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInteger
	KindDate
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "other"
	}
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	dateType    = reflect.TypeOf(Date{})
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

// KindOf classifies a Go type. Pointer types are classified by their element.
func KindOf(typ reflect.Type) Kind {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ {
	case dateType:
		return KindDate
	case timeType:
		return KindDateTime
	}

	switch typ.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	}
	return KindOther
}

// IsScanner reports whether a pointer to typ implements sql.Scanner.
func IsScanner(typ reflect.Type) bool {
	return reflect.PointerTo(typ).Implements(scannerType)
}

// Field represents a database column mapped from a struct field
type Field struct {
	Name   string       // Struct field name
	Column string       // DB column name
	Kind   Kind         // Semantic type used for coercion
	Type   reflect.Type // Field type
	Index  []int        // Index path, embedded structs included
	IsID   bool         // Carries the identifier marker
	Tag    string       // Raw tag string
}

// ValueIn returns f's field inside the struct value v, allocating nil
// embedded pointers along the index path. v must be addressable.
func (f *Field) ValueIn(v reflect.Value) reflect.Value {
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
