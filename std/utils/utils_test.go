package utils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/std/utils"
)

func TestIf(t *testing.T) {
	require.Equal(t, "a", utils.If(true, "a", "b"))
	require.Equal(t, 2, utils.If(false, 1, 2))
}

func TestClamp(t *testing.T) {
	require.Equal(t, uint64(math.MaxUint16), utils.Clamp(uint64(1<<20), 0, math.MaxUint16))
	require.Equal(t, int64(math.MinInt16), utils.Clamp(int64(-1<<20), math.MinInt16, math.MaxInt16))
	require.Equal(t, 42, utils.Clamp(42, 0, 100))
}
