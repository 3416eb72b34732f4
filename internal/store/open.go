package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	SQLite      *sql.DB
	RedisURL    string
	RedisPrefix string
	DatabaseURL string
}

// Open builds the backend named by opts.Driver. The returned close function
// releases connections the backend opened itself; the SQLite handle stays
// owned by the caller.
func Open(ctx context.Context, opts Options) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch opts.Driver {
	case DriverSQLite, "":
		if opts.SQLite == nil {
			return nil, nil, errors.New("sqlite storage needs an open database")
		}
		return NewSQLiteBackend(opts.SQLite), noop, nil

	case DriverMemory:
		return NewMemoryBackend(), noop, nil

	case DriverRedis:
		rdb, err := NewRedisClient(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		return NewRedisBackend(rdb, prefix), rdb.Close, nil

	case DriverPostgres:
		gdb, err := OpenPostgres(opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		return NewGormBackend(gdb), sqlDB.Close, nil
	}

	return nil, nil, &UnknownDriverError{Driver: opts.Driver}
}
