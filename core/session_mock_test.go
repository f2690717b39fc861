package core

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrek82/minorm/dialect"
	"github.com/shrek82/minorm/logger"
)

const findPersonSQL = `SELECT * FROM "person" WHERE "id" = $1 LIMIT 1`

func newMockSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, ok := dialect.Get("postgres")
	require.True(t, ok)

	s, err := NewSessionFactory(db, d, WithLogger(logger.NewDiscard())).CreateSession(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mock
}

func TestSessionReleasesRows(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		rows      *sqlmock.Rows
		expectErr error
		check     func(t *testing.T, p *Person)
	}{
		{
			name: "row found",
			rows: sqlmock.NewRows([]string{"id", "name", "created_at"}).
				AddRow(int64(1), "Alice", ts),
			check: func(t *testing.T, p *Person) {
				assert.Equal(t, int64(1), p.ID)
				assert.Equal(t, "Alice", p.Name)
				assert.True(t, p.CreatedAt.Equal(ts))
			},
		},
		{
			name: "no row",
			rows: sqlmock.NewRows([]string{"id", "name", "created_at"}),
			check: func(t *testing.T, p *Person) {
				assert.Equal(t, &Person{}, p)
			},
		},
		{
			name: "mapping failure",
			rows: sqlmock.NewRows([]string{"id", "name", "created_at"}).
				AddRow(int64(1), "Alice", int64(99)),
			expectErr: ErrNotCoercible,
		},
		{
			name: "row iteration failure",
			rows: sqlmock.NewRows([]string{"id", "name", "created_at"}).
				AddRow(int64(1), "Alice", ts).
				RowError(0, errors.New("broken stream")),
			expectErr: ErrExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockSession(t)
			mock.ExpectQuery(findPersonSQL).
				WithArgs(int64(1)).
				WillReturnRows(tt.rows).
				RowsWillBeClosed()

			p, err := Find[Person](context.Background(), s, int64(1))
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				tt.check(t, p)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionExecutionError(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectQuery(findPersonSQL).
		WithArgs("abc").
		WillReturnError(errors.New("relation does not exist"))

	_, err := Find[Person](context.Background(), s, "abc")
	require.Error(t, err)

	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, findPersonSQL, ee.SQL)
	assert.Contains(t, err.Error(), "core.Person")
	assert.Contains(t, err.Error(), "id abc")
	assert.Contains(t, err.Error(), "relation does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionConnDone(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectQuery(findPersonSQL).WillReturnError(sql.ErrConnDone)

	_, err := Find[Person](context.Background(), s, int64(1))
	assert.ErrorIs(t, err, ErrConnection)
}

type failingProvider struct{ err error }

func (p failingProvider) Conn(context.Context) (*sql.Conn, error) { return nil, p.err }

func TestCreateSessionConnectionError(t *testing.T) {
	d, _ := dialect.Get("postgres")
	cause := errors.New("too many clients")
	f := NewSessionFactory(failingProvider{err: cause}, d, WithLogger(logger.NewDiscard()))

	s, err := f.CreateSession(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, cause)

	var ce *ConnectionError
	assert.ErrorAs(t, err, &ce)

	_, err = NewSessionFactory(nil, d).CreateSession(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "dsn", nil)
	assert.Error(t, err)
}
