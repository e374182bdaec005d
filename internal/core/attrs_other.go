//go:build !linux

package core

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

type fileAttrs struct {
	mode  os.FileMode
	mtime time.Time
}

func captureAttrs(path string) (*fileAttrs, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	return &fileAttrs{mode: info.Mode().Perm(), mtime: info.ModTime()}, nil
}

func (a *fileAttrs) restore(path string) []string {
	cur, err := captureAttrs(path)
	if err != nil {
		return []string{fmt.Sprintf("attributes not verified: %v", err)}
	}

	var warnings []string
	if cur.mode != a.mode {
		if err := os.Chmod(path, a.mode); err != nil {
			warnings = append(warnings, fmt.Sprintf("mode not preserved: %v", err))
		}
	}
	if !cur.mtime.Equal(a.mtime) {
		if err := os.Chtimes(path, a.mtime, a.mtime); err != nil {
			warnings = append(warnings, fmt.Sprintf("timestamps not preserved: %v", err))
		}
	}
	return warnings
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
