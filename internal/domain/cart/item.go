package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ProductKind is the fine-grained client-side classification of a cart line.
// The remote cart service only preserves the coarse kind (box vs. perfume),
// so ProductKind is minted locally and carried across reconciliations.
type ProductKind string

const (
	// KindCuratedBox is a box composed by the AI curation flow.
	KindCuratedBox ProductKind = "curated_box"
	// KindPersonalizedBox is a box the customer assembled perfume by perfume.
	KindPersonalizedBox ProductKind = "personalized_box"
	// KindGiftBox is a box configured for gifting.
	KindGiftBox ProductKind = "gift_box"
	// KindOccasionBox is a box built from an occasion questionnaire.
	KindOccasionBox ProductKind = "occasion_box"
	// KindPredefinedBox is one of the fixed catalog boxes.
	KindPredefinedBox ProductKind = "predefined_box"
	// KindDecant is a single perfume decant.
	KindDecant ProductKind = "decant"
)

// ParseProductKind parses a fine product kind string.
func ParseProductKind(s string) (ProductKind, error) {
	switch k := ProductKind(s); k {
	case KindCuratedBox, KindPersonalizedBox, KindGiftBox,
		KindOccasionBox, KindPredefinedBox, KindDecant:
		return k, nil
	default:
		return "", errors.Errorf("unknown product kind: %q", s)
	}
}

// CoarseKind is the limited classification the remote cart service round-trips.
type CoarseKind string

const (
	CoarseBox     CoarseKind = "box"
	CoarsePerfume CoarseKind = "perfume"
)

// Coarse maps a ProductKind to the classification the remote service accepts.
func (k ProductKind) Coarse() CoarseKind {
	if k == KindDecant {
		return CoarsePerfume
	}
	return CoarseBox
}

// IsBox reports whether the kind is any of the box variants.
func (k ProductKind) IsBox() bool {
	return k != KindDecant
}

// PerfumeSummary is one constituent perfume of a box composition.
type PerfumeSummary struct {
	ExternalID   string
	Name         string
	Brand        string
	ThumbnailRef string
}

// Composition describes the contents of a box-type cart line: which perfumes
// it holds and the decant volume/count they are filled at.
type Composition struct {
	Perfumes    []PerfumeSummary
	DecantSize  int // millilitres per decant
	DecantCount int
}

// Item is a single cart line as held locally.
//
// LocalID is minted client-side on first observation and stays stable for the
// lifetime of the line, so the UI can key rows on it across reconciliations.
// ServerID is assigned by the remote cart service once the line has synced;
// it is required to address removal. An Item without a ServerID must never be
// installed into cart state (see the mutation pipeline).
type Item struct {
	LocalID      string
	ServerID     string
	Kind         ProductKind
	DisplayName  string
	UnitPrice    decimal.Decimal
	ThumbnailRef string
	Composition  *Composition
}

// ServerItem is a cart line as reported by the remote cart service. The
// service only knows the coarse kind; the reconciler recovers the fine kind.
type ServerItem struct {
	ID           string
	Kind         CoarseKind
	Name         string
	Price        decimal.Decimal
	ThumbnailRef string
	Composition  *Composition
}
