//go:build !linux

package eval

import "os"

// FileStatus reports the state of path as used by ?path sources:
// -1 missing, 0 empty, 2 otherwise. Access times are not portable here, so
// the "read since modified" state (1) is never reported.
func FileStatus(path string) int {
	fi, err := os.Stat(path)
	if err != nil {
		return -1
	}
	if fi.Size() == 0 {
		return 0
	}
	return 2
}
