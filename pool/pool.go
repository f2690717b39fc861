package pool

import (
	"context"
	"database/sql"
	"time"
)

// Provider hands out one open connection at a time. *sql.DB satisfies it.
type Provider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Options defines the configuration for the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StdPool is a Provider backed by the standard library's *sql.DB.
type StdPool struct {
	*sql.DB
}

// NewStdPool creates a new StdPool wrapping the given *sql.DB.
func NewStdPool(db *sql.DB) *StdPool {
	return &StdPool{db}
}

// Open opens a pool for driver and dsn, applies opts and pings it.
func Open(ctx context.Context, driver, dsn string, opts *Options) (*StdPool, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	p := NewStdPool(db)
	p.Configure(opts)

	if err := p.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// Configure applies the non-zero values of opts.
func (p *StdPool) Configure(opts *Options) {
	if opts == nil {
		return
	}
	if opts.MaxOpenConns > 0 {
		p.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		p.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		p.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}
