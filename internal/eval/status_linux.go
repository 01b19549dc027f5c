//go:build linux

package eval

import "golang.org/x/sys/unix"

// FileStatus reports the state of path as used by ?path sources:
// -1 missing, 0 empty, 1 modified before it was last read, 2 otherwise.
func FileStatus(path string) int {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return -1
	}
	if st.Size == 0 {
		return 0
	}
	if st.Mtim.Sec < st.Atim.Sec {
		return 1
	}
	return 2
}
