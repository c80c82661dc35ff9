//go:build !(linux || darwin)

package table

func freeBytes(string) (uint64, bool) {
	return 0, false
}
