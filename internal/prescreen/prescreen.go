// Package prescreen holds a bloom filter over the published coupon-code
// space. A miss is a definite "code can never validate" and is answered
// locally without a coupon service round trip; a hit still validates
// remotely against the cart subtotal.
//
// The filter file is produced offline by cmd/coupon-prescreen from the
// gzipped coupon-code dumps the coupon team publishes.
package prescreen

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/xenking/scentcart/internal/domain/coupon"
)

// Filter is a read-mostly bloom filter over coupon codes. Codes are
// normalized (uppercased) before add and test, matching the validation path.
type Filter struct {
	bloom *bloom.BloomFilter
}

// NewFilter creates an empty filter sized for the expected code count and
// false positive rate.
func NewFilter(capacity uint, fpr float64) *Filter {
	return &Filter{bloom: bloom.NewWithEstimates(capacity, fpr)}
}

// Add inserts a code.
func (f *Filter) Add(code string) {
	f.bloom.AddString(coupon.NormalizeCode(code))
}

// MightContain reports whether the code could be in the published set.
// False is definitive; true may be a false positive.
func (f *Filter) MightContain(code string) bool {
	return f.bloom.TestString(coupon.NormalizeCode(code))
}

// Merge folds another filter into this one. Both filters must have been
// created with the same capacity and false positive rate.
func (f *Filter) Merge(other *Filter) error {
	return errors.Wrap(f.bloom.Merge(other.bloom), "merge prescreen filter")
}

// ApproximateCount estimates how many codes were added.
func (f *Filter) ApproximateCount() uint32 {
	return f.bloom.ApproximatedSize()
}

// WriteTo serializes the filter.
func (f *Filter) WriteTo(w io.Writer) (int64, error) {
	return f.bloom.WriteTo(w)
}

// Load reads a serialized filter from disk.
func Load(path string) (*Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open prescreen filter")
	}
	defer file.Close()

	var bf bloom.BloomFilter
	if _, err := bf.ReadFrom(file); err != nil {
		return nil, errors.Wrap(err, "read prescreen filter")
	}
	return &Filter{bloom: &bf}, nil
}

// Save writes the filter to disk atomically via a temp file rename.
func (f *Filter) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".prescreen-*.bloom")
	if err != nil {
		return errors.Wrap(err, "create temp filter file")
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write filter")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close filter file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "install filter file")
}
