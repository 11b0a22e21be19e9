package headers

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wire/errors"
)

// Header is a single field line. Both name and value usually point directly into the
// buffer the response was parsed from, therefore they stay valid as long as that buffer
// does and isn't overwritten.
type Header struct {
	Name, Value string
}

// Headers is an ordered list of header fields, backed by caller-provided storage. Its
// capacity never grows: adding a field into a full list fails with errors.ErrTooManyHeaders
// instead of either allocating or silently dropping the field. Fields are kept in the order
// they were received, duplicates included.
type Headers struct {
	pairs []Header
}

// New returns a list using the storage as a backing array. The storage length is ignored,
// the maximal number of fields is cap(storage).
func New(storage []Header) Headers {
	return Headers{pairs: storage[:0]}
}

// Add appends a new field.
func (h *Headers) Add(name, value string) error {
	if len(h.pairs) == cap(h.pairs) {
		return errors.ErrTooManyHeaders
	}

	h.pairs = append(h.pairs, Header{Name: name, Value: value})
	return nil
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (h Headers) Value(key string) string {
	value, _ := h.Get(key)
	return value
}

// Get returns a value and a bool, indicating whether the value was found. If it wasn't, it'll
// be an empty string.
func (h Headers) Get(key string) (value string, found bool) {
	for _, pair := range h.pairs {
		if strcomp.EqualFold(key, pair.Name) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values iterates over all the values of the key, in the order they were received.
func (h Headers) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range h.pairs {
			if strcomp.EqualFold(key, pair.Name) && !yield(pair.Value) {
				return
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (h Headers) Has(key string) bool {
	_, found := h.Get(key)
	return found
}

// Iter returns an iterator over the pairs.
func (h Headers) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range h.pairs {
			if !yield(pair.Name, pair.Value) {
				return
			}
		}
	}
}

// Len returns a number of stored pairs.
func (h Headers) Len() int {
	return len(h.pairs)
}

// Cap returns the maximal number of pairs the list can hold.
func (h Headers) Cap() int {
	return cap(h.pairs)
}

func (h Headers) Empty() bool {
	return h.Len() == 0
}

// Expose exposes the underlying pairs slice.
func (h Headers) Expose() []Header {
	return h.pairs
}

// Clear all the entries. The storage is kept.
func (h *Headers) Clear() {
	h.pairs = h.pairs[:0]
}
