// Package engine implements the client-side cart engine: it keeps a local
// cart representation consistent with the authoritative remote cart service,
// serializes mutations against it, and derives pricing from the items plus
// an optionally applied coupon.
//
// One Engine exists per user session. Mutations are serialized through a
// single-slot semaphore with a reject-busy policy: a second mutation
// arriving while one is in flight fails fast with ErrCartBusy instead of
// racing reconciliations against each other. The remote service is always
// the source of truth for item existence and identity; local state is only
// replaced after a successful round trip, never rolled back.
package engine

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/domain/coupon"
	"github.com/xenking/scentcart/internal/remote"
	"github.com/xenking/scentcart/internal/snapshot"
)

// CartService is the remote cart API surface the engine consumes.
type CartService interface {
	Fetch(ctx context.Context) ([]cart.ServerItem, error)
	AddItem(ctx context.Context, draft cart.Draft) ([]cart.ServerItem, error)
	RemoveItem(ctx context.Context, serverID string) ([]cart.ServerItem, error)
	Clear(ctx context.Context) error
}

// CouponService is the remote coupon validation surface.
type CouponService interface {
	Validate(ctx context.Context, code string, cartTotal decimal.Decimal) (coupon.Coupon, error)
}

// CodePrescreen answers whether a coupon code can possibly be valid. A
// definite miss short-circuits the remote round trip; a hit still validates
// remotely.
type CodePrescreen interface {
	MightContain(code string) bool
}

// Config holds the engine's collaborators. Cart and Coupons are required;
// Snapshots and Prescreen are optional.
type Config struct {
	SessionID string
	Cart      CartService
	Coupons   CouponService
	Snapshots snapshot.Store
	Prescreen CodePrescreen
}

// timeNow is swappable for tests.
var timeNow = time.Now

// Engine is the per-session cart engine.
type Engine struct {
	sessionID string
	cart      CartService
	coupons   CouponService
	snapshots snapshot.Store
	prescreen CodePrescreen

	st   *store
	slot *semaphore.Weighted
}

// New creates an Engine for one cart session.
func New(cfg Config) (*Engine, error) {
	if cfg.SessionID == "" {
		return nil, errors.New("session ID is required")
	}
	if cfg.Cart == nil {
		return nil, errors.New("cart service is required")
	}
	if cfg.Coupons == nil {
		return nil, errors.New("coupon service is required")
	}
	return &Engine{
		sessionID: cfg.SessionID,
		cart:      cfg.Cart,
		coupons:   cfg.Coupons,
		snapshots: cfg.Snapshots,
		prescreen: cfg.Prescreen,
		st:        newStore(),
		slot:      semaphore.NewWeighted(1),
	}, nil
}

// State returns a copy of the current cart state.
func (e *Engine) State() State {
	return e.st.state()
}

// Pricing derives subtotal, discount, and final price from the current
// items and applied coupon.
func (e *Engine) Pricing() cart.Pricing {
	items, applied := e.st.currentItemsAndCoupon()
	return cart.ComputePricing(items, applied)
}

// Hydrate loads the cart once at session start: the local snapshot first as
// a fallback display, then the authoritative remote list. A missing remote
// cart means empty, not an error. A failed hydration keeps the fallback
// items and surfaces the failure through the state error channel.
func (e *Engine) Hydrate(ctx context.Context) error {
	if !e.slot.TryAcquire(1) {
		return ErrCartBusy
	}
	defer e.slot.Release(1)

	e.st.beginOp()
	defer func() {
		e.st.endOp()
		e.persist(ctx)
	}()

	if e.snapshots != nil {
		snap, err := e.snapshots.Load(ctx, e.sessionID)
		switch {
		case err == nil:
			e.st.installFallback(snap.Items, snap.Kinds)
		case !errors.Is(err, snapshot.ErrNoSnapshot):
			zctx.From(ctx).Warn("snapshot load failed", zap.Error(err))
		}
	}

	serverItems, err := e.cart.Fetch(ctx)
	if err != nil && !errors.Is(err, remote.ErrNotFound) {
		stateErr := stateErrorFrom(err)
		e.st.setError(stateErr)
		return stateErr
	}

	// A 404 means the cart does not exist yet: an empty list.
	e.st.reconcile(serverItems)
	return nil
}

// Add validates the draft locally, submits it to the remote cart service,
// and installs the reconciled result. On failure the item list is left
// exactly as it was: an item without a server identifier is never inserted
// speculatively, since it could not later be removed by server id.
func (e *Engine) Add(ctx context.Context, draft cart.Draft) error {
	if err := draft.Validate(); err != nil {
		stateErr := &StateError{Kind: KindValidationFailure, Message: err.Error()}
		e.st.setError(stateErr)
		return stateErr
	}

	if !e.slot.TryAcquire(1) {
		return ErrCartBusy
	}
	defer e.slot.Release(1)

	e.st.beginOp()
	defer func() {
		e.st.endOp()
		e.persist(ctx)
	}()

	serverItems, err := e.cart.AddItem(ctx, draft)
	if err != nil {
		stateErr := stateErrorFrom(err)
		e.st.setError(stateErr)
		return stateErr
	}

	// Record the draft's fine kind for server lines we have not seen
	// before, so reconciliation does not fall back to name inference.
	for _, newID := range e.newServerIDs(serverItems) {
		e.st.rememberKind(newID, draft.Kind)
	}

	e.st.reconcile(serverItems)
	return nil
}

// Remove deletes the item with the given local identifier. An item that
// never synced (no server identifier) is removed purely locally, without a
// round trip.
func (e *Engine) Remove(ctx context.Context, localID string) error {
	if !e.slot.TryAcquire(1) {
		return ErrCartBusy
	}
	defer e.slot.Release(1)

	e.st.beginOp()
	defer func() {
		e.st.endOp()
		e.persist(ctx)
	}()

	item, ok := e.st.findByLocalID(localID)
	if !ok {
		stateErr := &StateError{
			Kind:    KindInvariantViolation,
			Message: "item not in cart: " + localID,
		}
		e.st.setError(stateErr)
		return stateErr
	}

	if item.ServerID == "" {
		e.st.removeLocally(localID)
		return nil
	}

	serverItems, err := e.cart.RemoveItem(ctx, item.ServerID)
	if err != nil {
		stateErr := stateErrorFrom(err)
		e.st.setError(stateErr)
		return stateErr
	}

	// An empty response means the cart is now empty.
	e.st.reconcile(serverItems)
	return nil
}

// Clear empties the remote cart. On success the items are dropped and any
// applied coupon and coupon error are cleared unconditionally; on failure
// the state is left untouched.
func (e *Engine) Clear(ctx context.Context) error {
	if !e.slot.TryAcquire(1) {
		return ErrCartBusy
	}
	defer e.slot.Release(1)

	e.st.beginOp()
	defer func() {
		e.st.endOp()
		e.persist(ctx)
	}()

	if err := e.cart.Clear(ctx); err != nil {
		stateErr := stateErrorFrom(err)
		e.st.setError(stateErr)
		return stateErr
	}

	e.st.reconcile(nil)
	e.st.clearCouponState()
	return nil
}

// newServerIDs returns server identifiers present in serverItems but not in
// the current local items.
func (e *Engine) newServerIDs(serverItems []cart.ServerItem) []string {
	current := e.st.state().Items
	known := make(map[string]struct{}, len(current))
	for _, it := range current {
		if it.ServerID != "" {
			known[it.ServerID] = struct{}{}
		}
	}
	var out []string
	for _, srv := range serverItems {
		if _, ok := known[srv.ID]; !ok {
			out = append(out, srv.ID)
		}
	}
	return out
}

// persist writes the settled item state to the snapshot store. Writes are
// suppressed while any round trip is outstanding so partially-applied
// intermediate states never reach the snapshot. Failures are logged, not
// surfaced; the snapshot is a cache, not a source of truth.
func (e *Engine) persist(ctx context.Context) {
	if e.snapshots == nil {
		return
	}
	items, kinds, ok := e.st.snapshotPayload()
	if !ok {
		return
	}
	snap := &snapshot.Snapshot{Items: items, Kinds: kinds, SavedAt: timeNow()}
	if err := e.snapshots.Save(ctx, e.sessionID, snap); err != nil {
		e.st.markDirty()
		zctx.From(ctx).Warn("snapshot save failed", zap.Error(err))
	}
}
