package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Digital-Shane/treeview"
)

type treeBuilderFunc func(context.Context, string, bool, ...treeview.Option[treeview.FileInfo]) (*treeview.Tree[treeview.FileInfo], error)

var treeBuilder treeBuilderFunc = treeview.NewTreeFromFileSystem

// Discover returns the media files beneath roots, sorted and without
// duplicates. A root may also name a single file. Hidden files and macOS
// resource forks are skipped.
func Discover(ctx context.Context, roots []string, isMedia func(name string) bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", root, err)
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() && !skipName(info.Name()) && isMedia(info.Name()) {
				add(root)
			}
			continue
		}

		tree, err := treeBuilder(ctx, root, false,
			treeview.WithTraversalCap[treeview.FileInfo](2000000),
			treeview.WithFilterFunc(func(fi treeview.FileInfo) bool {
				if skipName(fi.Name()) {
					return false
				}
				return fi.IsDir() || fi.FileInfo.Mode().IsRegular()
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("cannot scan %s: %w", root, err)
		}

		base, _ := filepath.Abs(root)
		for ni := range tree.All(ctx) {
			data := ni.Node.Data()
			if data.IsDir() || !isMedia(data.Name()) || hiddenBelow(base, data.Path) {
				continue
			}
			add(data.Path)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// hiddenBelow reports whether any element of path below root is hidden.
func hiddenBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if skipName(part) {
			return true
		}
	}
	return false
}

func skipName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".") || name == "Thumbs.db"
}
