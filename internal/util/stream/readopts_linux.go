//go:build linux
// +build linux

package stream

import (
	"os"

	"golang.org/x/sys/unix"
)

var ReadOptimizations = []Optimization{
	{
		Name: "fadvise(SEQUENTIAL)",
		Action: func(fh *os.File, stat os.FileInfo) error {
			if !stat.Mode().IsRegular() {
				return os.ErrInvalid
			}
			return unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
		},
	},
}
