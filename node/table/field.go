package table

import (
	"fmt"
	"strconv"

	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/tlv"
)

// Kind is the semantic type of a field slot.
type Kind uint8

const (
	KindString Kind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindU8:
		return "u8"
	case KindI8:
		return "i8"
	case KindU16:
		return "u16"
	case KindI16:
		return "i16"
	case KindU32:
		return "u32"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Width is the encoded size of a numeric kind, 0 for strings.
func (k Kind) Width() int {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32:
		return 4
	}
	return 0
}

// Value holds either a string or a numeric slot value.
type Value struct {
	Str string
	Num int64
}

func Text(s string) Value { return Value{Str: s} }
func Num(n int64) Value   { return Value{Num: n} }

// Validator accepts or rejects a decoded value before it is committed.
type Validator func(Value) error

// Field describes one registry entry.
type Field struct {
	Tag  defn.Tag
	Kind Kind
	// Persistence key, empty if the field is not persisted.
	Key     string
	Default Value
	// Settable iff non-nil.
	Validate Validator
	// Computed fields have no slot and are evaluated at read time.
	Read func() Value
}

func (f *Field) Settable() bool {
	return f.Validate != nil && f.Read == nil
}

func (f *Field) Persisted() bool {
	return f.Key != "" && f.Read == nil
}

// Encode serializes v at the field's wire width.
func (f *Field) Encode(v Value) []byte {
	switch f.Kind {
	case KindU8:
		return tlv.EncodeNumeric(uint8(v.Num))
	case KindI8:
		return tlv.EncodeNumeric(int8(v.Num))
	case KindU16:
		return tlv.EncodeNumeric(uint16(v.Num))
	case KindI16:
		return tlv.EncodeNumeric(int16(v.Num))
	case KindU32:
		return tlv.EncodeNumeric(uint32(v.Num))
	}
	return []byte(v.Str)
}

// Decode parses raw TLV bytes. Numerics must match the width exactly.
func (f *Field) Decode(raw []byte) (Value, error) {
	switch f.Kind {
	case KindU8:
		return decodeAs[uint8](raw)
	case KindI8:
		return decodeAs[int8](raw)
	case KindU16:
		return decodeAs[uint16](raw)
	case KindI16:
		return decodeAs[int16](raw)
	case KindU32:
		return decodeAs[uint32](raw)
	}
	return Text(string(raw)), nil
}

// Format renders v as the text kept in durable storage.
func (f *Field) Format(v Value) string {
	if f.Kind == KindString {
		return v.Str
	}
	return strconv.FormatInt(v.Num, 10)
}

// Parse reads the stored text form back. Numbers outside the kind's range fail.
func (f *Field) Parse(s string) (Value, error) {
	var (
		n   int64
		u   uint64
		err error
	)
	switch f.Kind {
	case KindString:
		return Text(s), nil
	case KindU8, KindU16, KindU32:
		u, err = strconv.ParseUint(s, 10, f.Kind.Width()*8)
		n = int64(u)
	default:
		n, err = strconv.ParseInt(s, 10, f.Kind.Width()*8)
	}
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", f.Key, err)
	}
	return Num(n), nil
}

func decodeAs[T uint8 | int8 | uint16 | int16 | uint32](raw []byte) (Value, error) {
	v, err := tlv.DecodeNumeric[T](raw)
	if err != nil {
		return Value{}, err
	}
	return Num(int64(v)), nil
}
