package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/domain/coupon"
	"github.com/xenking/scentcart/internal/engine"
)

// maxBodySize bounds gateway request bodies. Cart drafts are small; anything
// bigger is a client bug.
const maxBodySize = 1 << 20

// writeCart renders the session's full cart view: items, mutation flag, the
// latest operation and coupon errors, the applied coupon, and derived pricing.
func writeCart(w http.ResponseWriter, status int, eng *engine.Engine) {
	st := eng.State()
	pricing := eng.Pricing()

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range st.Items {
		encodeItem(&e, item)
	}
	e.ArrEnd()
	e.FieldStart("isMutating")
	e.Bool(st.IsMutating)
	e.FieldStart("lastError")
	encodeStateError(&e, st.LastError)
	e.FieldStart("couponError")
	encodeStateError(&e, st.CouponError)
	e.FieldStart("appliedCoupon")
	encodeCoupon(&e, st.AppliedCoupon)
	e.FieldStart("pricing")
	e.ObjStart()
	e.FieldStart("subtotal")
	encodeDecimal(&e, pricing.Subtotal)
	e.FieldStart("discount")
	encodeDecimal(&e, pricing.Discount)
	e.FieldStart("finalPrice")
	encodeDecimal(&e, pricing.FinalPrice)
	e.ObjEnd()
	e.ObjEnd()

	writeJSON(w, status, e.Bytes())
}

func encodeItem(e *jx.Encoder, item cart.Item) {
	e.ObjStart()
	e.FieldStart("localId")
	e.Str(item.LocalID)
	e.FieldStart("serverId")
	e.Str(item.ServerID)
	e.FieldStart("kind")
	e.Str(string(item.Kind))
	e.FieldStart("name")
	e.Str(item.DisplayName)
	e.FieldStart("price")
	encodeDecimal(e, item.UnitPrice)
	if item.ThumbnailRef != "" {
		e.FieldStart("thumbnail")
		e.Str(item.ThumbnailRef)
	}
	if item.Composition != nil {
		e.FieldStart("composition")
		encodeComposition(e, item.Composition)
	}
	e.ObjEnd()
}

func encodeComposition(e *jx.Encoder, comp *cart.Composition) {
	e.ObjStart()
	e.FieldStart("perfumes")
	e.ArrStart()
	for _, p := range comp.Perfumes {
		e.ObjStart()
		e.FieldStart("externalId")
		e.Str(p.ExternalID)
		e.FieldStart("name")
		e.Str(p.Name)
		e.FieldStart("brand")
		e.Str(p.Brand)
		if p.ThumbnailRef != "" {
			e.FieldStart("thumbnailRef")
			e.Str(p.ThumbnailRef)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("decantSize")
	e.Int(comp.DecantSize)
	e.FieldStart("decantCount")
	e.Int(comp.DecantCount)
	e.ObjEnd()
}

func encodeStateError(e *jx.Encoder, se *engine.StateError) {
	if se == nil {
		e.Null()
		return
	}
	e.ObjStart()
	e.FieldStart("kind")
	e.Str(string(se.Kind))
	e.FieldStart("message")
	e.Str(se.Message)
	e.ObjEnd()
}

func encodeCoupon(e *jx.Encoder, c *coupon.Coupon) {
	if c == nil {
		e.Null()
		return
	}
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("code")
	e.Str(c.Code)
	e.FieldStart("discountType")
	e.Str(string(c.Type))
	e.FieldStart("discountValue")
	encodeDecimal(e, c.Value)
	if c.Description != "" {
		e.FieldStart("description")
		e.Str(c.Description)
	}
	if !c.MinPurchaseAmount.IsZero() {
		e.FieldStart("minPurchaseAmount")
		encodeDecimal(e, c.MinPurchaseAmount)
	}
	if c.ExpiresAt != nil {
		e.FieldStart("expiryDate")
		e.Str(c.ExpiresAt.Format(time.RFC3339))
	}
	e.ObjEnd()
}

// encodeDecimal emits a decimal as a bare JSON number, matching what the
// remote services produce.
func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.RawStr(v.String())
}

// writeEngineError reports an engine failure. The body mirrors the StateError
// shape so clients can handle inline and HTTP-reported errors uniformly.
func writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if errors.Is(err, engine.ErrCartBusy) {
		writeError(w, status, "cart mutation already in progress")
		return
	}
	var se *engine.StateError
	if errors.As(err, &se) {
		var e jx.Encoder
		e.ObjStart()
		e.FieldStart("kind")
		e.Str(string(se.Kind))
		e.FieldStart("message")
		e.Str(se.Message)
		e.ObjEnd()
		writeJSON(w, status, e.Bytes())
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeDraft parses a POST /cart/items request body into a draft line.
// Validation beyond shape (composition rules, price sign) is the engine's.
func decodeDraft(r *http.Request) (cart.Draft, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return cart.Draft{}, errors.Wrap(err, "read body")
	}
	var draft cart.Draft
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "kind":
			v, err := d.Str()
			if err != nil {
				return err
			}
			draft.Kind, err = cart.ParseProductKind(v)
			return err
		case "name":
			v, err := d.Str()
			draft.DisplayName = v
			return err
		case "price":
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			draft.UnitPrice, err = decimal.NewFromString(trimQuotes(raw.String()))
			return err
		case "thumbnail":
			v, err := d.Str()
			draft.ThumbnailRef = v
			return err
		case "composition":
			comp, err := decodeComposition(d)
			draft.Composition = comp
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return cart.Draft{}, errors.Wrap(err, "decode draft")
	}
	return draft, nil
}

func decodeComposition(d *jx.Decoder) (*cart.Composition, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	comp := &cart.Composition{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "perfumes":
			return d.Arr(func(d *jx.Decoder) error {
				var p cart.PerfumeSummary
				err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "externalId":
						v, err := d.Str()
						p.ExternalID = v
						return err
					case "name":
						v, err := d.Str()
						p.Name = v
						return err
					case "brand":
						v, err := d.Str()
						p.Brand = v
						return err
					case "thumbnailRef":
						v, err := d.Str()
						p.ThumbnailRef = v
						return err
					default:
						return d.Skip()
					}
				})
				if err != nil {
					return err
				}
				comp.Perfumes = append(comp.Perfumes, p)
				return nil
			})
		case "decantSize":
			v, err := d.Int()
			comp.DecantSize = v
			return err
		case "decantCount":
			v, err := d.Int()
			comp.DecantCount = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return comp, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// decodeCouponCode parses a {"code": "..."} coupon application body.
func decodeCouponCode(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}
	var code string
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "code" {
			return d.Skip()
		}
		v, err := d.Str()
		code = v
		return err
	})
	if err != nil {
		return "", errors.Wrap(err, "decode coupon request")
	}
	return code, nil
}
