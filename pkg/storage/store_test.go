package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/huettenzauber/kiosk/pkg/db/models"
	kioskredis "github.com/huettenzauber/kiosk/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newRedisStore(t *testing.T, origin string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	store, err := NewRedisStore(kioskredis.NewFromRaw(raw, "hz"), origin)
	require.NoError(t, err)
	return store, mr
}

func newSQLStore(t *testing.T, conn *gorm.DB, origin string) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(conn, origin)
	require.NoError(t, err)
	return store
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.StoreEntry{}))
	return conn
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, KeyCart)
	require.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	require.NoError(t, store.Set(ctx, KeyCart, `{"items":[]}`))
	value, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	require.Equal(t, `{"items":[]}`, value)

	require.NoError(t, store.Set(ctx, KeyCart, `{"items":[1]}`))
	value, err = store.Get(ctx, KeyCart)
	require.NoError(t, err)
	require.Equal(t, `{"items":[1]}`, value)

	require.NoError(t, store.Delete(ctx, KeyCart))
	_, err = store.Get(ctx, KeyCart)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, "till")
	exerciseStore(t, store)
	require.NoError(t, store.Ping(context.Background()))
}

func TestRedisStoreNamespacesByOrigin(t *testing.T) {
	store, mr := newRedisStore(t, "till")
	require.NoError(t, store.Set(context.Background(), KeyTheme, "dark"))

	got, err := mr.Get("hz:till:theme")
	require.NoError(t, err)
	require.Equal(t, "dark", got)
}

func TestSQLStore(t *testing.T) {
	store := newSQLStore(t, openSQLite(t), "till")
	exerciseStore(t, store)
	require.NoError(t, store.Ping(context.Background()))
}

func TestSQLStoreIsolatesOrigins(t *testing.T) {
	conn := openSQLite(t)
	till := newSQLStore(t, conn, "till")
	bar := newSQLStore(t, conn, "bar")
	ctx := context.Background()

	require.NoError(t, till.Set(ctx, KeyTheme, "dark"))
	_, err := bar.Get(ctx, KeyTheme)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, bar.Set(ctx, KeyTheme, "light"))
	value, err := till.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.Equal(t, "dark", value)
}

func TestConstructorsRequireOrigin(t *testing.T) {
	if _, err := NewSQLStore(nil, "till"); err == nil {
		t.Fatal("expected error for nil db")
	}
	if _, err := NewRedisStore(nil, "till"); err == nil {
		t.Fatal("expected error for nil redis client")
	}
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer raw.Close()
	if _, err := NewRedisStore(kioskredis.NewFromRaw(raw, "hz"), ""); err == nil {
		t.Fatal("expected error for empty origin")
	}
}
