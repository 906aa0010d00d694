// Package handler exposes the cart engine over HTTP for UI clients. Each
// request addresses one session's engine, resolved from the X-Session-ID
// header; responses carry the full cart state plus derived pricing so the
// UI never has to compute money itself.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/scentcart/internal/engine"
	"github.com/xenking/scentcart/internal/session"
)

// sessionHeader carries the client-chosen cart session identifier.
const sessionHeader = "X-Session-ID"

// Handler routes gateway requests to per-session cart engines.
type Handler struct {
	sessions *session.Manager
}

// NewHandler constructs a Handler on top of the session manager.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// Routes returns the gateway's route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cart", h.getCart)
	mux.HandleFunc("POST /cart/items", h.addItem)
	mux.HandleFunc("DELETE /cart/items/{localID}", h.removeItem)
	mux.HandleFunc("DELETE /cart", h.clearCart)
	mux.HandleFunc("POST /cart/coupon", h.applyCoupon)
	mux.HandleFunc("DELETE /cart/coupon", h.removeCoupon)
	return mux
}

// resolve looks up the request's engine. A missing session header is a 400.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing "+sessionHeader+" header")
		return nil, false
	}
	eng, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return eng, true
}

// statusFor maps an engine failure to an HTTP status. The engine has
// already recorded the failure in cart state; the status only tells the
// client how to treat the response.
func statusFor(err error) int {
	if errors.Is(err, engine.ErrCartBusy) {
		return http.StatusConflict
	}
	var se *engine.StateError
	if errors.As(err, &se) {
		switch se.Kind {
		case engine.KindValidationFailure:
			return http.StatusBadRequest
		case engine.KindInvariantViolation, engine.KindNotFound:
			return http.StatusNotFound
		case engine.KindServerRejection:
			return http.StatusUnprocessableEntity
		case engine.KindNetworkFailure:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}
