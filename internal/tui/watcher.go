package tui

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// snapshot maps project-relative slash paths of .py files to their mtimes. Comparing two snapshots is how the watcher detects edits, creations, and
// deletions alike.
type snapshot map[string]time.Time

// takeSnapshot walks root and records every .py file not covered by an ignore pattern. Unreadable entries are skipped so a transient permission problem
// doesn't fail the whole scan; only an unreadable root is an error.
func takeSnapshot(root string, ignore []string) (snapshot, error) {
	snap := snapshot{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignoredDir(rel, ignore) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(rel, ".py") || ignoredPath(rel, ignore) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		snap[rel] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// changed reports whether two snapshots differ in membership or in any file's mtime.
func (s snapshot) changed(o snapshot) bool {
	if len(s) != len(o) {
		return true
	}
	for path, mtime := range s {
		other, ok := o[path]
		if !ok || !other.Equal(mtime) {
			return true
		}
	}
	return false
}

// paths returns the snapshot's relative paths in sorted order. The card renderer scans tool output for these names to find file:line references.
func (s snapshot) paths() []string {
	out := make([]string, 0, len(s))
	for path := range s {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func ignoredPath(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ignoredDir reports whether a directory is fully covered by an ignore pattern, letting the walk prune it. A trailing "/**" covers the directory itself:
// ".venv/**" prunes ".venv", "**/__pycache__/**" prunes any __pycache__.
func ignoredDir(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if strings.HasSuffix(p, "/**") {
			if ok, err := doublestar.Match(strings.TrimSuffix(p, "/**"), rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}
