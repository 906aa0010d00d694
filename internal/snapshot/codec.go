package snapshot

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/scentcart/internal/domain/cart"
)

// Encode serializes a snapshot to its storage payload.
func Encode(snap *Snapshot) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("savedAt")
	e.Str(snap.SavedAt.UTC().Format(time.RFC3339Nano))

	e.FieldStart("kinds")
	e.ObjStart()
	for serverID, kind := range snap.Kinds {
		e.FieldStart(serverID)
		e.Str(string(kind))
	}
	e.ObjEnd()

	e.FieldStart("items")
	e.ArrStart()
	for i := range snap.Items {
		encodeItem(&e, &snap.Items[i])
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

func encodeItem(e *jx.Encoder, it *cart.Item) {
	e.ObjStart()
	e.FieldStart("localId")
	e.Str(it.LocalID)
	e.FieldStart("serverId")
	e.Str(it.ServerID)
	e.FieldStart("kind")
	e.Str(string(it.Kind))
	e.FieldStart("name")
	e.Str(it.DisplayName)
	e.FieldStart("price")
	e.RawStr(it.UnitPrice.String())
	if it.ThumbnailRef != "" {
		e.FieldStart("thumbnail")
		e.Str(it.ThumbnailRef)
	}
	if it.Composition != nil {
		e.FieldStart("composition")
		e.ObjStart()
		e.FieldStart("perfumes")
		e.ArrStart()
		for _, p := range it.Composition.Perfumes {
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
		e.Int(it.Composition.DecantSize)
		e.FieldStart("decantCount")
		e.Int(it.Composition.DecantCount)
		e.ObjEnd()
	}
	e.ObjEnd()
}

// Decode parses a storage payload back into a snapshot.
func Decode(payload []byte) (*Snapshot, error) {
	snap := &Snapshot{Kinds: cart.KindMemory{}}
	d := jx.DecodeBytes(payload)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "savedAt":
			v, err := d.Str()
			if err != nil {
				return err
			}
			ts, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return errors.Wrap(err, "parse savedAt")
			}
			snap.SavedAt = ts
			return nil
		case "kinds":
			return d.Obj(func(d *jx.Decoder, serverID string) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				snap.Kinds[serverID] = cart.ProductKind(v)
				return nil
			})
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeItem(d)
				if err != nil {
					return err
				}
				snap.Items = append(snap.Items, it)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return snap, nil
}

func decodeItem(d *jx.Decoder) (cart.Item, error) {
	var it cart.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "localId":
			v, err := d.Str()
			it.LocalID = v
			return err
		case "serverId":
			v, err := d.Str()
			it.ServerID = v
			return err
		case "kind":
			v, err := d.Str()
			it.Kind = cart.ProductKind(v)
			return err
		case "name":
			v, err := d.Str()
			it.DisplayName = v
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			v, err := decimal.NewFromString(strings.Trim(string(n), `"`))
			it.UnitPrice = v
			return err
		case "thumbnail":
			v, err := d.Str()
			it.ThumbnailRef = v
			return err
		case "composition":
			comp, err := decodeComposition(d)
			it.Composition = comp
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeComposition(d *jx.Decoder) (*cart.Composition, error) {
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
