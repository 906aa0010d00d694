package handler

import (
	"net/http"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeCart(w, http.StatusOK, eng)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.resolve(w, r)
	if !ok {
		return
	}
	draft, err := decodeDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := eng.Add(r.Context(), draft); err != nil {
		writeEngineError(w, err)
		return
	}
	writeCart(w, http.StatusCreated, eng)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := eng.Remove(r.Context(), r.PathValue("localID")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeCart(w, http.StatusOK, eng)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := eng.Clear(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeCart(w, http.StatusOK, eng)
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.resolve(w, r)
	if !ok {
		return
	}
	code, err := decodeCouponCode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := eng.ApplyCoupon(r.Context(), code); err != nil {
		writeEngineError(w, err)
		return
	}
	writeCart(w, http.StatusOK, eng)
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.resolve(w, r)
	if !ok {
		return
	}
	eng.RemoveCoupon()
	writeCart(w, http.StatusOK, eng)
}
