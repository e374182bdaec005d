//go:build linux

package core

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileAttrs is the metadata carried across a rename.
type fileAttrs struct {
	mode  os.FileMode
	uid   int
	gid   int
	atime unix.Timespec
	mtime unix.Timespec
}

const preservedModeBits = os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky

func captureAttrs(path string) (*fileAttrs, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return nil, err
	}
	return &fileAttrs{
		mode:  info.Mode() & preservedModeBits,
		uid:   int(st.Uid),
		gid:   int(st.Gid),
		atime: st.Atim,
		mtime: st.Mtim,
	}, nil
}

// restore re-applies a to path wherever the current attributes differ
// and returns one warning per attribute that could not be restored.
func (a *fileAttrs) restore(path string) []string {
	cur, err := captureAttrs(path)
	if err != nil {
		return []string{fmt.Sprintf("attributes not verified: %v", err)}
	}

	var warnings []string
	// Ownership first: chown may clear setuid and setgid bits.
	if cur.uid != a.uid || cur.gid != a.gid {
		if err := os.Lchown(path, a.uid, a.gid); err != nil {
			warnings = append(warnings, fmt.Sprintf("owner not preserved: %v", err))
		}
	}
	if cur.mode != a.mode {
		if err := os.Chmod(path, a.mode); err != nil {
			warnings = append(warnings, fmt.Sprintf("mode not preserved: %v", err))
		}
	}
	if cur.atime != a.atime || cur.mtime != a.mtime {
		if err := unix.UtimesNano(path, []unix.Timespec{a.atime, a.mtime}); err != nil {
			warnings = append(warnings, fmt.Sprintf("timestamps not preserved: %v", err))
		}
	}
	return warnings
}

func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
