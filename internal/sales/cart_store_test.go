package sales

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartStore(client, 12*time.Hour), mr
}

func TestCartStoreRoundTrip(t *testing.T) {
	store, mr := newTestCartStore(t)
	ctx := context.Background()

	cart, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	p := snapshot("Smartphone Galaxy", "SMG-1", "299.99", 15)
	require.NoError(t, cart.Add(p))
	require.NoError(t, cart.SetDiscount(p.ID, dec("7.5")))
	require.NoError(t, store.Save(ctx, "sess-1", cart))
	assert.Equal(t, 12*time.Hour, mr.TTL("cart:sess-1"))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, p.ID, loaded.Lines[0].Product.ID)
	assert.True(t, loaded.Lines[0].DiscountPercent.Equal(dec("7.5")))

	other, err := store.Load(ctx, "sess-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.False(t, mr.Exists("cart:sess-1"))
}

func TestCartStoreExpires(t *testing.T) {
	store, mr := newTestCartStore(t)
	ctx := context.Background()

	cart := NewCart()
	require.NoError(t, cart.Add(snapshot("Pen", "P-1", "1", 1)))
	require.NoError(t, store.Save(ctx, "sess-1", cart))

	mr.FastForward(13 * time.Hour)
	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
