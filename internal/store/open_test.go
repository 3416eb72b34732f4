package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	backend, closeFn, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &MemoryBackend{}, backend)
}

func TestOpen_SQLite(t *testing.T) {
	sqlite := newSQLiteBackend(t)

	backend, closeFn, err := Open(context.Background(), Options{Driver: DriverSQLite, SQLite: sqlite.db})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &SQLiteBackend{}, backend)

	_, _, err = Open(context.Background(), Options{Driver: DriverSQLite})
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Driver: "mongo"})

	var unknown *UnknownDriverError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "mongo", unknown.Driver)
}
