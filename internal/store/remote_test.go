package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, backend Backend, key string) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.PutMany(ctx, map[string][]byte{key: []byte(`[1]`)}))
	require.NoError(t, backend.PutMany(ctx, map[string][]byte{key: []byte(`[1,2]`)}))

	data, ok, err := backend.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1,2]`, string(data))
}

func TestRedisBackend(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	rdb, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	defer rdb.Close()

	prefix := "test:" + uuid.NewString() + ":"
	exerciseBackend(t, NewRedisBackend(rdb, prefix), "materials")
	rdb.Del(context.Background(), prefix+"materials")
}

func TestGormBackend(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gdb, err := OpenPostgres(dsn)
	require.NoError(t, err)

	key := "test-" + uuid.NewString()
	exerciseBackend(t, NewGormBackend(gdb), key)
	gdb.Exec(`DELETE FROM collections WHERE name = ?`, key)
}
