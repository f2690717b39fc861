package core

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/shrek82/minorm/model"
)

// Row is one retrieved row keyed by column name.
type Row map[string]any

// lookup finds column exactly, then case-insensitively.
func (r Row) lookup(column string) (any, bool) {
	if v, ok := r[column]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

// NewEmpty returns a pointer to a new instance of m with every field at its zero value.
func NewEmpty(m *model.Model) (any, error) {
	v, ok := m.New()
	if !ok {
		return nil, fmt.Errorf("%v has no zero-argument constructor", m.Type)
	}
	return v.Interface(), nil
}

// MapRow creates an instance of m and fills every mapped field from row.
func MapRow(m *model.Model, row Row) (any, error) {
	ptr, ok := m.New()
	if !ok {
		return nil, fmt.Errorf("%v has no zero-argument constructor", m.Type)
	}
	elem := ptr.Elem()

	for _, f := range m.Fields {
		val, ok := row.lookup(f.Column)
		if !ok {
			return nil, &MappingError{Field: f.Name, Column: f.Column, Err: ErrColumnMissing}
		}
		if err := setField(f.ValueIn(elem), f.Kind, val); err != nil {
			return nil, &MappingError{Field: f.Name, Column: f.Column, Value: val, Err: err}
		}
	}
	return ptr.Interface(), nil
}

func setField(dst reflect.Value, kind model.Kind, val any) error {
	if val == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		nv := reflect.New(dst.Type().Elem())
		if err := setField(nv.Elem(), kind, val); err != nil {
			return err
		}
		dst.Set(nv)
		return nil
	}

	switch kind {
	case model.KindDate:
		d, err := toDate(val)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(d))
	case model.KindDateTime:
		t, err := toDateTime(val)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
	case model.KindString, model.KindInteger, model.KindOther:
		return assign(dst, val)
	default:
		return fmt.Errorf("unsupported field kind %v", kind)
	}
	return nil
}

func toDate(val any) (model.Date, error) {
	switch v := val.(type) {
	case time.Time:
		return model.DateOf(v), nil
	case model.Date:
		return v, nil
	case string, []byte:
		t, err := parseTime(asString(v))
		if err != nil {
			return model.Date{}, err
		}
		if t.IsZero() {
			return model.Date{}, nil
		}
		return model.DateOf(t), nil
	}
	return model.Date{}, fmt.Errorf("%w: %T to date", ErrNotCoercible, val)
}

func toDateTime(val any) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string, []byte:
		return parseTime(asString(v))
	}
	return time.Time{}, fmt.Errorf("%w: %T to datetime", ErrNotCoercible, val)
}

// parseTime parses driver text. MySQL zero dates map to the zero time.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, nil
	}
	for _, layout := range model.TimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a recognised date or time", ErrNotCoercible, s)
}

func asString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v.(string)
}

// assign stores val unchanged when it fits; otherwise only representational
// conversions made by database drivers are applied.
func assign(dst reflect.Value, val any) error {
	if model.IsScanner(dst.Type()) {
		if err := dst.Addr().Interface().(sql.Scanner).Scan(val); err != nil {
			return fmt.Errorf("%w: %v", ErrNotCoercible, err)
		}
		return nil
	}

	src := reflect.ValueOf(val)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if src.Kind() == dst.Kind() && src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		if b, ok := val.([]byte); ok {
			dst.SetString(string(b))
			return nil
		}
	case reflect.Slice:
		if s, ok := val.(string); ok && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes([]byte(s))
			return nil
		}
	case reflect.Bool:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n := src.Int(); n == 0 || n == 1 {
				dst.SetBool(n == 1)
				return nil
			}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if !dst.OverflowInt(src.Int()) {
				dst.SetInt(src.Int())
				return nil
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if u := src.Uint(); u <= math.MaxInt64 && !dst.OverflowInt(int64(u)) {
				dst.SetInt(int64(u))
				return nil
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n := src.Int(); n >= 0 && !dst.OverflowUint(uint64(n)) {
				dst.SetUint(uint64(n))
				return nil
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if !dst.OverflowUint(src.Uint()) {
				dst.SetUint(src.Uint())
				return nil
			}
		}
	case reflect.Float32, reflect.Float64:
		switch src.Kind() {
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(src.Float())
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetFloat(float64(src.Int()))
			return nil
		}
	}

	return fmt.Errorf("%w: %T to %v", ErrNotCoercible, val, dst.Type())
}
