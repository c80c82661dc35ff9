package table

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTag = errors.New("unknown tag")
	ErrReadOnly   = errors.New("field is read-only")
	ErrInvalid    = errors.New("invalid value")
)

// MaxIDLen bounds both the node id and the alias.
const MaxIDLen = 31

// AnyValue accepts every value of the right width.
func AnyValue(Value) error {
	return nil
}

// InRange accepts numerics in [lo, hi].
func InRange(lo, hi int64) Validator {
	return func(v Value) error {
		if v.Num < lo || v.Num > hi {
			return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalid, v.Num, lo, hi)
		}
		return nil
	}
}

// OneOf accepts only the listed numerics.
func OneOf(vals ...int64) Validator {
	return func(v Value) error {
		for _, ok := range vals {
			if v.Num == ok {
				return nil
			}
		}
		return fmt.Errorf("%w: %d not in %v", ErrInvalid, v.Num, vals)
	}
}

// MaxLen accepts strings of at most n bytes, including the empty string.
func MaxLen(n int) Validator {
	return func(v Value) error {
		if len(v.Str) > n {
			return fmt.Errorf("%w: length %d exceeds %d", ErrInvalid, len(v.Str), n)
		}
		return nil
	}
}

// ValidID accepts 1..31 characters from [A-Za-z0-9_-].
func ValidID(v Value) error {
	if len(v.Str) == 0 || len(v.Str) > MaxIDLen {
		return fmt.Errorf("%w: id length %d", ErrInvalid, len(v.Str))
	}
	for i := 0; i < len(v.Str); i++ {
		if !IsIDChar(v.Str[i]) {
			return fmt.Errorf("%w: id character %q", ErrInvalid, v.Str[i])
		}
	}
	return nil
}

func IsIDChar(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}
