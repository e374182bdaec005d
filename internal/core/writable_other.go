//go:build !unix

package core

import (
	"fmt"
	"os"
)

// dirWritable checks dir from its stat information alone. A directory
// without the owner write bit is treated as read-only.
func dirWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmt.Errorf("%s is read-only", dir)
	}
	return nil
}
