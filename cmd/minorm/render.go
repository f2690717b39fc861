package main

import (
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/shrek82/minorm"
)

// renderEntity prints one row with the entity's columns as the header.
func renderEntity(w io.Writer, entity any) error {
	m, err := minorm.Resolve(reflect.TypeOf(entity))
	if err != nil {
		return err
	}
	v := reflect.Indirect(reflect.ValueOf(entity))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(m.Fields))
	row := make(table.Row, len(m.Fields))
	for i, f := range m.Fields {
		header[i] = f.Column
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			row[i] = formatValue(nil)
			continue
		}
		row[i] = formatValue(fv.Interface())
	}
	t.AppendHeader(header)
	t.AppendRow(row)
	t.Render()
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return "NULL"
		}
		return formatValue(*val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
