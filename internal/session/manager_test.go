package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/domain/coupon"
	"github.com/xenking/scentcart/internal/engine"
)

type fakeCart struct {
	fetches atomic.Int32
}

func (f *fakeCart) Fetch(context.Context) ([]cart.ServerItem, error) {
	f.fetches.Add(1)
	return nil, nil
}

func (f *fakeCart) AddItem(context.Context, cart.Draft) ([]cart.ServerItem, error) {
	return nil, nil
}

func (f *fakeCart) RemoveItem(context.Context, string) ([]cart.ServerItem, error) {
	return nil, nil
}

func (f *fakeCart) Clear(context.Context) error { return nil }

type fakeCoupons struct{}

func (fakeCoupons) Validate(context.Context, string, decimal.Decimal) (coupon.Coupon, error) {
	return coupon.Coupon{}, nil
}

func testFactory(carts *fakeCart) Factory {
	return func(sessionID string) (*engine.Engine, error) {
		return engine.New(engine.Config{
			SessionID: sessionID,
			Cart:      carts,
			Coupons:   fakeCoupons{},
		})
	}
}

func TestGet_CreatesAndHydratesOnce(t *testing.T) {
	carts := &fakeCart{}
	m := NewManager(testFactory(carts), time.Minute)
	ctx := context.Background()

	first, err := m.Get(ctx, "session-1")
	require.NoError(t, err)
	second, err := m.Get(ctx, "session-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), carts.fetches.Load(), "hydrate runs once per session")
	assert.Equal(t, 1, m.Len())
}

func TestGet_SessionsAreIndependent(t *testing.T) {
	carts := &fakeCart{}
	m := NewManager(testFactory(carts), time.Minute)
	ctx := context.Background()

	a, err := m.Get(ctx, "session-a")
	require.NoError(t, err)
	b, err := m.Get(ctx, "session-b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, m.Len())
}

func TestGet_EmptySessionID(t *testing.T) {
	m := NewManager(testFactory(&fakeCart{}), time.Minute)
	_, err := m.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestEvictIdle(t *testing.T) {
	carts := &fakeCart{}
	m := NewManager(testFactory(carts), 10*time.Millisecond)
	ctx := context.Background()

	_, err := m.Get(ctx, "session-1")
	require.NoError(t, err)

	m.evictIdle(time.Now().Add(time.Second))
	assert.Zero(t, m.Len())

	// Re-access recreates and re-hydrates.
	_, err = m.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), carts.fetches.Load())
}
