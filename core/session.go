package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/shrek82/minorm/dialect"
	"github.com/shrek82/minorm/logger"
	"github.com/shrek82/minorm/model"
	"github.com/shrek82/minorm/validator"
)

// Session is a unit of work bound to one connection.
// It is not safe for concurrent use; give each goroutine its own Session.
type Session struct {
	conn    *sql.Conn
	dialect dialect.Dialect
	logger  logger.Logger
	slow    time.Duration
}

// Close releases the session's connection. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// FindByID loads the entity of type typ whose identifier equals id and
// returns a pointer to it. When no row matches, the returned instance has
// every field at its zero value and the error is nil.
func (s *Session) FindByID(ctx context.Context, typ reflect.Type, id any) (any, error) {
	v, _, err := s.lookup(ctx, typ, id)
	return v, err
}

// Find is the typed form of FindByID.
func Find[T any](ctx context.Context, s *Session, id any) (*T, error) {
	v, _, err := Lookup[T](ctx, s, id)
	return v, err
}

// Lookup is like Find and also reports whether a row matched.
func Lookup[T any](ctx context.Context, s *Session, id any) (*T, bool, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	v, found, err := s.lookup(ctx, typ, id)
	if err != nil {
		return nil, false, err
	}
	out, ok := v.(*T)
	if !ok {
		return nil, false, &FindError{Type: typ, ID: id, Err: fmt.Errorf("type parameter %v must be a struct type, got %T", typ, v)}
	}
	return out, found, nil
}

func (s *Session) lookup(ctx context.Context, typ reflect.Type, id any) (out any, found bool, err error) {
	defer func() {
		if err != nil {
			out, found = nil, false
			err = &FindError{Type: typ, ID: id, Err: err}
		}
	}()

	if err := validator.Validate(typ); err != nil {
		return nil, false, err
	}
	m, err := model.Resolve(typ)
	if err != nil {
		return nil, false, err
	}
	stmt, err := BuildFindByID(s.dialect, m, id)
	if err != nil {
		return nil, false, err
	}

	row, err := s.queryRow(ctx, stmt)
	if err != nil {
		return nil, false, err
	}
	if row == nil {
		out, err = NewEmpty(m)
		return out, false, err
	}

	out, err = MapRow(m, row)
	return out, err == nil, err
}

// queryRow executes stmt and returns its first row, or nil when there is none.
// The result set is closed before returning on every path.
func (s *Session) queryRow(ctx context.Context, stmt *Statement) (row Row, err error) {
	if s.conn == nil {
		return nil, &ConnectionError{Err: sql.ErrConnDone}
	}

	log := s.logger
	if fields := fieldsFromContext(ctx); len(fields) > 0 {
		log = log.WithFields(fields)
	}

	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	elapsed := time.Since(start)
	log.SQL(stmt.SQL, elapsed, stmt.Args...)
	if s.slow > 0 && elapsed > s.slow {
		log.Warn("slow query: %v exceeds %v", elapsed, s.slow)
	}
	if err != nil {
		return nil, s.execError(stmt, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			row, err = nil, s.execError(stmt, cerr)
		}
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, s.execError(stmt, err)
		}
		return nil, nil
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, s.execError(stmt, err)
	}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, s.execError(stmt, err)
	}

	row = make(Row, len(columns))
	for i, col := range columns {
		row[col] = values[i]
	}
	return row, nil
}

func (s *Session) execError(stmt *Statement, err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		s.logger.Error("connection unavailable: %v", err)
		return &ConnectionError{Err: err}
	}
	return &ExecutionError{SQL: stmt.SQL, Err: err}
}

type ctxFieldsKey struct{}

// ContextWithFields attaches log fields such as request or trace ids
// to every statement a session runs with the returned context.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	merged := make(map[string]any)
	for k, v := range fieldsFromContext(ctx) {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

func fieldsFromContext(ctx context.Context) map[string]any {
	fields, _ := ctx.Value(ctxFieldsKey{}).(map[string]any)
	return fields
}
