package processor

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"squash/pkg/assetkind"
)

// Plan maps each category to the sorted, unique absolute paths it will
// process.
type Plan map[assetkind.Category][]string

// Total is the number of tasks across all categories.
func (p Plan) Total() int {
	n := 0
	for _, paths := range p {
		n += len(paths)
	}
	return n
}

// Discover walks roots and buckets every regular file whose extension
// belongs to an enabled category. Roots may be files or directories, and may
// overlap; each path appears at most once. Unreadable roots and entries are
// skipped.
func Discover(roots []string, enabled assetkind.Set) Plan {
	found := make(map[assetkind.Category]map[string]struct{})
	add := func(path string) {
		c := assetkind.Classify(path, enabled)
		if c == assetkind.CategoryNone {
			return
		}
		if found[c] == nil {
			found[c] = make(map[string]struct{})
		}
		found[c][path] = struct{}{}
	}

	for _, root := range roots {
		absRoot, ok := canonical(root)
		if !ok {
			continue
		}
		info, err := os.Stat(absRoot)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() {
				add(absRoot)
			}
			continue
		}

		_ = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			add(path)
			return nil
		})
	}

	plan := make(Plan, len(found))
	for c, set := range found {
		paths := make([]string, 0, len(set))
		for path := range set {
			paths = append(paths, path)
		}
		slices.Sort(paths)
		plan[c] = paths
	}
	return plan
}

// canonical returns the absolute, symlink-free form of path so that the same
// file reached through different roots compares equal.
func canonical(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", false
	}
	return filepath.Clean(resolved), true
}
