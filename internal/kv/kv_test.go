package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Wryz/bible-modules/internal/kv"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "@bible:current_verse")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "@bible:current_verse", `{"reference":"John 3:16"}`))
	value, found, err := store.Get(ctx, "@bible:current_verse")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"reference":"John 3:16"}`, value)

	require.NoError(t, store.Set(ctx, "@bible:current_verse", `{"reference":"John 3:17"}`))
	value, _, err = store.Get(ctx, "@bible:current_verse")
	require.NoError(t, err)
	assert.Equal(t, `{"reference":"John 3:17"}`, value)

	require.NoError(t, store.Delete(ctx, "@bible:current_verse"))
	_, found, err = store.Get(ctx, "@bible:current_verse")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Delete(ctx, "@bible:current_verse"), "deleting a missing key is a no-op")
}

func TestMemory(t *testing.T) {
	store := kv.NewMemory()
	exerciseStore(t, store)

	require.NoError(t, store.Close())
	_, _, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, kv.ErrClosed)
	assert.ErrorIs(t, store.Set(context.Background(), "k", "v"), kv.ErrClosed)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := kv.NewSQLite(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, store)

	require.NoError(t, store.Set(ctx, "@bible:widget_settings", `{"refreshFrequency":"hourly"}`))
	require.NoError(t, store.Close())

	reopened, err := kv.NewSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "@bible:widget_settings")
	require.NoError(t, err)
	assert.True(t, found, "values survive reopening the file")
	assert.Equal(t, `{"refreshFrequency":"hourly"}`, value)
}

func TestSQLite_RequiresPath(t *testing.T) {
	_, err := kv.NewSQLite(context.Background(), "")
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := kv.NewRedis(context.Background(), kv.RedisConfig{Address: mr.Addr(), Prefix: "device-1:"})
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "@bible:theme_name", "dark"))
	got, err := mr.Get("device-1:@bible:theme_name")
	require.NoError(t, err)
	assert.Equal(t, "dark", got, "keys are namespaced by the prefix")
}

func TestRedis_EmptyAddress(t *testing.T) {
	store, err := kv.NewRedis(context.Background(), kv.RedisConfig{})
	assert.ErrorIs(t, err, kv.ErrEmptyAddress)
	assert.Nil(t, store)
}

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("bible_verses"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("Skipping test: could not start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := kv.NewPostgres(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := kv.Open(ctx, kv.Config{Driver: kv.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &kv.Memory{}, store)

	store, err = kv.Open(ctx, kv.Config{Driver: kv.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	assert.IsType(t, &kv.SQLite{}, store)
	require.NoError(t, store.Close())

	_, err = kv.Open(ctx, kv.Config{Driver: "leveldb"})
	assert.ErrorIs(t, err, kv.ErrUnknownDriver)
}
