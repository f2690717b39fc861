package core

import (
	"reflect"
	"strings"

	"github.com/shrek82/minorm/dialect"
	"github.com/shrek82/minorm/model"
)

// Statement is a SQL text and the values bound to its placeholders.
type Statement struct {
	SQL  string
	Args []any
}

// BuildFindByID builds the single-row lookup of m by its identifier. The id
// is always bound as a parameter, never written into the SQL text.
func BuildFindByID(d dialect.Dialect, m *model.Model, id any) (*Statement, error) {
	if isNil(id) {
		return nil, ErrInvalidID
	}

	var sb strings.Builder
	top, limit := d.SingleRow()

	sb.WriteString("SELECT ")
	if top != "" {
		sb.WriteString(top)
		sb.WriteString(" ")
	}
	sb.WriteString("* FROM ")
	sb.WriteString(d.Quote(m.TableName))
	sb.WriteString(" WHERE ")
	sb.WriteString(d.Quote(m.ID.Column))
	sb.WriteString(" = ")
	sb.WriteString(d.Placeholder(1))
	if limit != "" {
		sb.WriteString(" ")
		sb.WriteString(limit)
	}

	return &Statement{SQL: sb.String(), Args: []any{id}}, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
