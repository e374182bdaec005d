package core

import (
	"strings"
)

const invalidFilenameChars = "<>:\"/\\|?*"

// sanitizeValue makes a substituted template value safe for a filename.
// Characters that are invalid on common filesystems and control
// characters become spaces, and runs of whitespace collapse to one.
func sanitizeValue(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	lastSpace := false
	for _, r := range value {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) || r == ' ' {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}
