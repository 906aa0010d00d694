package engine

import (
	"sync"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/domain/coupon"
)

// State is a point-in-time copy of the cart as observed by consumers. Items
// and the coupon are deep-copied; mutating a State never affects the engine.
type State struct {
	Items         []cart.Item
	IsMutating    bool
	LastError     *StateError
	CouponError   *StateError
	AppliedCoupon *coupon.Coupon
}

// store owns the single mutable cart state of a session. All access goes
// through its methods; the mutation pipeline is the only writer of items.
type store struct {
	mu sync.Mutex

	items    []cart.Item
	kinds    cart.KindMemory
	inFlight int
	dirty    bool

	lastErr   *StateError
	couponErr *StateError
	coupon    *coupon.Coupon
}

func newStore() *store {
	return &store{kinds: cart.KindMemory{}}
}

// beginOp marks a round trip as outstanding and clears the previous
// operation error so the UI observes a clean in-progress state.
func (s *store) beginOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.lastErr = nil
}

// beginRead marks a round trip as outstanding without touching the
// operation error channel. Coupon validation reads items but never writes
// them, so a prior mutation error stays visible through it.
func (s *store) beginRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
}

func (s *store) endOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		s.inFlight--
	}
}

// replaceItems installs a reconciled item list. The kind memory is rebuilt
// from the installed items so it tracks exactly the lines the server knows.
func (s *store) replaceItems(items []cart.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	kinds := make(cart.KindMemory, len(items))
	for _, it := range items {
		if it.ServerID != "" {
			kinds[it.ServerID] = it.Kind
		}
	}
	s.kinds = kinds
	s.dirty = true
}

// installFallback seeds items and kind memory from a snapshot without
// marking state dirty; the snapshot is already persisted.
func (s *store) installFallback(items []cart.Item, kinds cart.KindMemory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	if kinds != nil {
		s.kinds = kinds.Clone()
	}
}

// reconcile runs the reconciliation engine against the current items under
// the store lock and installs the result.
func (s *store) reconcile(serverItems []cart.ServerItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cart.Reconcile(serverItems, s.items, s.kinds)
	kinds := make(cart.KindMemory, len(s.items))
	for _, it := range s.items {
		if it.ServerID != "" {
			kinds[it.ServerID] = it.Kind
		}
	}
	s.kinds = kinds
	s.dirty = true
}

// rememberKind records the fine kind for a server identifier ahead of
// reconciliation, so a freshly added line keeps the kind its draft carried.
func (s *store) rememberKind(serverID string, kind cart.ProductKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds[serverID] = kind
}

func (s *store) setError(err *StateError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

func (s *store) setCoupon(c *coupon.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = c
	if c != nil {
		s.couponErr = nil
	}
}

func (s *store) setCouponError(err *StateError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couponErr = err
	if err != nil {
		s.coupon = nil
	}
}

// clearCouponState drops the coupon and its error channel together. Coupon
// semantics are defined relative to cart contents, so a cleared cart cannot
// keep either.
func (s *store) clearCouponState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = nil
	s.couponErr = nil
}

// findByLocalID returns the item with the given local identifier.
func (s *store) findByLocalID(localID string) (cart.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.LocalID == localID {
			return it, true
		}
	}
	return cart.Item{}, false
}

// removeLocally drops an item by local identifier without any remote call.
// Only valid for items that never synced (no server identifier).
func (s *store) removeLocally(localID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items[:0:0]
	for _, it := range s.items {
		if it.LocalID != localID {
			out = append(out, it)
		}
	}
	s.items = out
	s.dirty = true
}

// snapshotPayload returns the items and kind memory to persist, and whether
// the state is settled and dirty. It clears the dirty flag optimistically;
// a failed persist sets it back via markDirty.
func (s *store) snapshotPayload() (items []cart.Item, kinds cart.KindMemory, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != 0 || !s.dirty {
		return nil, nil, false
	}
	s.dirty = false
	return copyItems(s.items), s.kinds.Clone(), true
}

func (s *store) markDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}

// state returns a deep copy of the observable cart state.
func (s *store) state() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Items:       copyItems(s.items),
		IsMutating:  s.inFlight > 0,
		LastError:   s.lastErr,
		CouponError: s.couponErr,
	}
	if s.coupon != nil {
		c := *s.coupon
		st.AppliedCoupon = &c
	}
	return st
}

// currentItemsAndCoupon returns copies for pricing derivation.
func (s *store) currentItemsAndCoupon() ([]cart.Item, *coupon.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c *coupon.Coupon
	if s.coupon != nil {
		cc := *s.coupon
		c = &cc
	}
	return copyItems(s.items), c
}

func copyItems(items []cart.Item) []cart.Item {
	if items == nil {
		return nil
	}
	out := make([]cart.Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Composition != nil {
			comp := *out[i].Composition
			comp.Perfumes = append([]cart.PerfumeSummary(nil), comp.Perfumes...)
			out[i].Composition = &comp
		}
	}
	return out
}
