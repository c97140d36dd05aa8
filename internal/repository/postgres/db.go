package postgres

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

type Endpoint struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (e Endpoint) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(e.User, e.Password),
		Host:   net.JoinHostPort(e.Host, e.Port),
		Path:   "/" + e.Database,
	}
	if e.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{e.SSLMode}}.Encode()
	}
	return u.String()
}

type Options struct {
	ConnectTimeout time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
}

// New opens a lazily connecting handle. No connection is made until the
// first operation acquires one.
func New(dsn string, opts Options) (*sqlx.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}
	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	db.SetMaxIdleConns(opts.MaxIdleConns)
	return db, nil
}
