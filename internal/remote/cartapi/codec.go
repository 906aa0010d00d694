package cartapi

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/remote"
)

// encodeAddItem builds the POST /cart/items payload from a draft. The
// service only understands the coarse kind; quantity is always 1 because a
// box is a single configured line, never multiplied.
func encodeAddItem(draft cart.Draft) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("productKind")
	e.Str(string(draft.Kind.Coarse()))
	e.FieldStart("name")
	e.Str(draft.DisplayName)
	e.FieldStart("price")
	e.RawStr(draft.UnitPrice.String())
	e.FieldStart("quantity")
	e.Int(1)
	if draft.ThumbnailRef != "" {
		e.FieldStart("thumbnail")
		e.Str(draft.ThumbnailRef)
	}
	if draft.Composition != nil {
		e.FieldStart("boxConfiguration")
		encodeComposition(&e, draft.Composition)
	}
	e.ObjEnd()
	return e.Bytes()
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

// decodeItemList parses a {"items": [...]} response. A bare top-level array
// is accepted too; older deployments of the cart service returned that.
func decodeItemList(body []byte) ([]cart.ServerItem, error) {
	if len(body) == 0 {
		return nil, nil
	}
	d := jx.DecodeBytes(body)

	var items []cart.ServerItem
	var err error
	switch d.Next() {
	case jx.Array:
		items, err = decodeItems(d)
	case jx.Object:
		err = d.Obj(func(d *jx.Decoder, key string) error {
			if key != "items" {
				return d.Skip()
			}
			var inner error
			items, inner = decodeItems(d)
			return inner
		})
	default:
		err = errors.New("unexpected item list shape")
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode item list")
	}
	return items, nil
}

func decodeItems(d *jx.Decoder) ([]cart.ServerItem, error) {
	var items []cart.ServerItem
	err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func decodeItem(d *jx.Decoder) (cart.ServerItem, error) {
	var item cart.ServerItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			item.ID = v
			return err
		case "kind", "productKind":
			v, err := d.Str()
			item.Kind = cart.CoarseKind(v)
			return err
		case "name":
			v, err := d.Str()
			item.Name = v
			return err
		case "price":
			v, err := remote.DecodeDecimal(d)
			item.Price = v
			return err
		case "thumbnail", "thumbnailRef":
			v, err := d.Str()
			item.ThumbnailRef = v
			return err
		case "boxConfiguration":
			comp, err := decodeComposition(d)
			item.Composition = comp
			return err
		default:
			return d.Skip()
		}
	})
	return item, err
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
				p, err := decodePerfume(d)
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

func decodePerfume(d *jx.Decoder) (cart.PerfumeSummary, error) {
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
	return p, err
}
