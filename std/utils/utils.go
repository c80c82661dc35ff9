package utils

import (
	"golang.org/x/exp/constraints"
)

// Version of the node firmware, reported as FW_VERSION.
// Overridden at build time with -ldflags "-X .../std/utils.Version=x.y.z".
var Version string = "1.0.0"

// If is the ternary operator (eager evaluation)
func If[T any](cond bool, t, f T) T {
	if cond {
		return t
	}
	return f
}

// Clamp saturates v to [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
