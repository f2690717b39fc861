package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shrek82/minorm/dialect"
	"github.com/shrek82/minorm/logger"
	"github.com/shrek82/minorm/pool"
)

// Options defines the configuration for the DB connection pool.
type Options = pool.Options

// SessionFactory creates Sessions, each bound to its own connection taken
// from the provider.
type SessionFactory struct {
	provider pool.Provider
	dialect  dialect.Dialect
	logger   logger.Logger
	slow     time.Duration
	closer   io.Closer
}

// Option configures a SessionFactory.
type Option func(*SessionFactory)

// WithLogger sets the logger used for statements and connection failures.
func WithLogger(l logger.Logger) Option {
	return func(f *SessionFactory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithSlowThreshold logs statements slower than d at warn level. Zero disables it.
func WithSlowThreshold(d time.Duration) Option {
	return func(f *SessionFactory) {
		f.slow = d
	}
}

// NewSessionFactory returns a factory drawing connections from p.
func NewSessionFactory(p pool.Provider, d dialect.Dialect, opts ...Option) *SessionFactory {
	f := &SessionFactory{
		provider: p,
		dialect:  d,
		logger:   logger.NewStdLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open initializes a connection pool with the given driver and DSN and
// returns a factory over it. Close the factory to close the pool.
func Open(driver, dsn string, opts *Options, fopts ...Option) (*SessionFactory, error) {
	d, ok := dialect.Get(driver)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %s", driver)
	}

	p, err := pool.Open(context.Background(), driver, dsn, opts)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	f := NewSessionFactory(p, d, fopts...)
	f.closer = p
	return f, nil
}

// CreateSession obtains one connection and binds it to a new Session.
func (f *SessionFactory) CreateSession(ctx context.Context) (*Session, error) {
	if f.provider == nil {
		return nil, &ConnectionError{Err: fmt.Errorf("no connection provider")}
	}
	conn, err := f.provider.Conn(ctx)
	if err != nil {
		f.logger.Error("cannot obtain connection for session: %v", err)
		return nil, &ConnectionError{Err: err}
	}
	return &Session{
		conn:    conn,
		dialect: f.dialect,
		logger:  f.logger,
		slow:    f.slow,
	}, nil
}

// Close closes the pool opened by Open. Factories built with
// NewSessionFactory leave the provider to the caller.
func (f *SessionFactory) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}
