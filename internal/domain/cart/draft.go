package cart

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for draft validation.
var (
	ErrEmptyComposition   = errors.New("composition must contain at least one perfume")
	ErrInvalidDecantSize  = errors.New("decant size must be greater than 0")
	ErrInvalidDecantCount = errors.New("decant count must be greater than 0")
	ErrEmptyName          = errors.New("display name required")
	ErrInvalidPrice       = errors.New("price must not be negative")
)

// Draft is a locally assembled cart line that has not been sent to the remote
// cart service yet. It never carries identifiers; those are assigned by the
// server (ServerID) and the reconciler (LocalID) after a successful add.
type Draft struct {
	Kind         ProductKind
	DisplayName  string
	UnitPrice    decimal.Decimal
	ThumbnailRef string
	Composition  *Composition
}

// Validate checks the draft before any network call is made. The remote
// service accepts malformed compositions silently, so this is the only gate.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.DisplayName) == "" {
		return ErrEmptyName
	}
	if d.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if d.Composition == nil || len(d.Composition.Perfumes) == 0 {
		return ErrEmptyComposition
	}
	if d.Composition.DecantSize <= 0 {
		return ErrInvalidDecantSize
	}
	if d.Composition.DecantCount <= 0 {
		return ErrInvalidDecantCount
	}
	return nil
}
