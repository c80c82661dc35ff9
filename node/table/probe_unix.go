//go:build linux || darwin

package table

import "golang.org/x/sys/unix"

func freeBytes(dir string) (uint64, bool) {
	if dir == "" {
		dir = "."
	}
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, false
	}
	return uint64(st.Bavail) * uint64(st.Bsize), true
}
