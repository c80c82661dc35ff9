// Package tlv reads and writes the {tag, len, value} entries carried in a
// frame body. Numeric values are little-endian.
package tlv

import (
	"errors"
	"iter"
	"unsafe"

	"github.com/viatext/vtnode/node/defn"
	"golang.org/x/exp/constraints"
)

// MaxValueLen is the largest value a single entry can carry.
const MaxValueLen = 255

var (
	ErrWidth     = errors.New("value length does not match numeric width")
	ErrValueLong = errors.New("value longer than 255 bytes")
)

// Append adds one entry to buf. Values longer than MaxValueLen are rejected.
func Append(buf []byte, tag defn.Tag, value []byte) ([]byte, error) {
	if len(value) > MaxValueLen {
		return buf, ErrValueLong
	}
	buf = append(buf, byte(tag), byte(len(value)))
	return append(buf, value...), nil
}

// EncodeNumeric returns the little-endian encoding of v at the natural width of T.
func EncodeNumeric[T constraints.Integer](v T) []byte {
	n := int(unsafe.Sizeof(v))
	out := make([]byte, n)
	u := uint64(v)
	for i := range n {
		out[i] = byte(u >> (8 * i))
	}
	return out
}

// AppendNumeric adds one little-endian numeric entry.
func AppendNumeric[T constraints.Integer](buf []byte, tag defn.Tag, v T) []byte {
	buf, _ = Append(buf, tag, EncodeNumeric(v))
	return buf
}

// DecodeNumeric reads a little-endian value whose length must equal the width of T.
func DecodeNumeric[T constraints.Integer](value []byte) (T, error) {
	var zero T
	if len(value) != int(unsafe.Sizeof(zero)) {
		return zero, ErrWidth
	}
	var u uint64
	for i, b := range value {
		u |= uint64(b) << (8 * i)
	}
	// Truncation back to T restores the sign for signed widths.
	return T(u), nil
}

// All iterates the entries of a TLV region in order. Iteration ends quietly
// at a truncated entry header or a value that overruns the region.
func All(body []byte) iter.Seq2[defn.Tag, []byte] {
	return func(yield func(defn.Tag, []byte) bool) {
		for pos := 0; pos+2 <= len(body); {
			tag, l := defn.Tag(body[pos]), int(body[pos+1])
			pos += 2
			if pos+l > len(body) {
				return
			}
			if !yield(tag, body[pos:pos+l]) {
				return
			}
			pos += l
		}
	}
}

// Find returns the value of the first entry with the given tag.
func Find(body []byte, tag defn.Tag) ([]byte, bool) {
	for t, v := range All(body) {
		if t == tag {
			return v, true
		}
	}
	return nil, false
}
