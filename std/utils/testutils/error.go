package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testT *testing.T

// SetT binds the helpers below to the running test.
func SetT(t *testing.T) {
	testT = t
}

// NoErr unwraps a (value, error) pair, failing the test on error.
func NoErr[T any](v T, err error) T {
	require.NoError(testT, err)
	return v
}

// Err asserts that a (value, error) pair carries an error.
func Err[T any](_ T, err error) error {
	require.Error(testT, err)
	return err
}

// Bytes is a shorthand for building expected frames in tables.
func Bytes(b ...byte) []byte {
	return b
}

// NoErr2 is NoErr for calls returning two values and an error.
func NoErr2[T, U any](v T, u U, err error) (T, U) {
	require.NoError(testT, err)
	return v, u
}
