package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// moveFile renames src to dst. When they live on different filesystems
// the content is copied to a temporary file beside dst, synced, renamed
// into place and only then is src removed. On any error src is left
// untouched and no partial dst remains.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	return copyAcross(src, dst)
}

func copyAcross(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".part-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return err
	}
	if err = os.Remove(src); err != nil {
		os.Remove(dst)
		return fmt.Errorf("remove original after copy: %w", err)
	}
	return nil
}
