package settings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

type memorySettingsRepo struct {
	values map[string]string
	gets   int
}

func newMemorySettingsRepo() *memorySettingsRepo {
	return &memorySettingsRepo{values: make(map[string]string)}
}

func (r *memorySettingsRepo) Get(ctx context.Context, key string) (string, error) {
	r.gets++
	val, ok := r.values[key]
	if !ok {
		return "", fmt.Errorf("settings: %q: %w", key, httpx.ErrNotFound)
	}
	return val, nil
}

func (r *memorySettingsRepo) Set(ctx context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *memorySettingsRepo) List(ctx context.Context) ([]Setting, error) {
	var out []Setting
	for k, v := range r.values {
		out = append(out, Setting{Key: k, Value: v})
	}
	return out, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestPPNDefaultsWhenUnset(t *testing.T) {
	svc := NewService(newMemorySettingsRepo(), NewCache(nil, 0))
	rate, err := svc.PPN(context.Background())
	require.NoError(t, err)
	require.True(t, rate.Equal(mustDecimal(t, "11")))
}

func TestPPNReadsStoredValue(t *testing.T) {
	repo := newMemorySettingsRepo()
	repo.values[KeyPPN] = "12.5"
	svc := NewService(repo, NewCache(nil, 0))
	rate, err := svc.PPN(context.Background())
	require.NoError(t, err)
	require.True(t, rate.Equal(mustDecimal(t, "12.5")))
}

func TestPPNFallsBackOnGarbage(t *testing.T) {
	repo := newMemorySettingsRepo()
	repo.values[KeyPPN] = "eleven"
	svc := NewService(repo, NewCache(nil, 0))
	rate, err := svc.PPN(context.Background())
	require.NoError(t, err)
	require.True(t, rate.Equal(mustDecimal(t, "11")))
}

func TestCacheServesRepeatedReads(t *testing.T) {
	repo := newMemorySettingsRepo()
	repo.values[KeyPPN] = "11"
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		val, err := svc.Get(ctx, KeyPPN)
		require.NoError(t, err)
		require.Equal(t, "11", val)
	}
	require.Equal(t, 1, repo.gets)
}

func TestSetInvalidatesCache(t *testing.T) {
	repo := newMemorySettingsRepo()
	repo.values[KeyPPN] = "11"
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	val, err := svc.Get(ctx, KeyPPN)
	require.NoError(t, err)
	require.Equal(t, "11", val)

	require.NoError(t, svc.Set(ctx, KeyPPN, "12"))

	val, err = svc.Get(ctx, KeyPPN)
	require.NoError(t, err)
	require.Equal(t, "12", val)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
