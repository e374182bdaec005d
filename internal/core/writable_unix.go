//go:build unix

package core

import "golang.org/x/sys/unix"

// dirWritable reports whether the process may create entries in dir.
// It only asks the kernel and leaves the directory untouched.
func dirWritable(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
