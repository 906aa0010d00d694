package engine

import (
	"context"

	"github.com/xenking/scentcart/internal/domain/coupon"
)

// ApplyCoupon validates a coupon code against the remote coupon service and
// the subtotal read at call time, and installs the result. A rejection
// installs the server's reason into the coupon error channel and drops any
// previously applied coupon: a failed re-validation intentionally removes
// the old coupon.
//
// Coupon validation toggles the busy flag so the UI can show progress, but
// it does not take the mutation slot: it reads items without writing them,
// and a cart clear that lands concurrently wipes coupon state on completion
// regardless of interleaving.
func (e *Engine) ApplyCoupon(ctx context.Context, code string) error {
	normalized := coupon.NormalizeCode(code)
	if normalized == "" {
		stateErr := &StateError{Kind: KindValidationFailure, Message: "coupon code required"}
		e.st.setCouponError(stateErr)
		return stateErr
	}

	// A definite prescreen miss cannot be a valid code; answer locally.
	if e.prescreen != nil && !e.prescreen.MightContain(normalized) {
		stateErr := &StateError{Kind: KindServerRejection, Message: "invalid coupon code"}
		e.st.setCouponError(stateErr)
		return stateErr
	}

	// beginRead, not beginOp: validation must leave any mutation error in
	// place. The persist in the defer flushes item state a concurrent
	// mutation settled while this validation held the busy counter up.
	e.st.beginRead()
	defer func() {
		e.st.endOp()
		e.persist(ctx)
	}()

	subtotal := e.Pricing().Subtotal

	validated, err := e.coupons.Validate(ctx, normalized, subtotal)
	if err != nil {
		stateErr := couponErrorFrom(err)
		e.st.setCouponError(stateErr)
		return stateErr
	}

	e.st.setCoupon(&validated)
	return nil
}

// RemoveCoupon drops the applied coupon and any coupon error. No network
// call is involved.
func (e *Engine) RemoveCoupon() {
	e.st.clearCouponState()
}

// couponErrorFrom maps a coupon service failure onto the coupon error
// channel. An unknown code (404) is a plain rejection, not a "not found"
// surfaced to the user.
func couponErrorFrom(err error) *StateError {
	stateErr := stateErrorFrom(err)
	if stateErr.Kind == KindNotFound {
		return &StateError{Kind: KindServerRejection, Message: "invalid coupon code"}
	}
	return stateErr
}
