// Package scan enumerates candidate workflow definition files under a root
// directory.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Find recursively collects files under root whose extension is in the
// allowlist. Hidden directories are skipped. The returned paths are sorted
// for stable discovery; processing order downstream is completion order.
func Find(root string, extensions []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range extensions {
			if strings.HasSuffix(d.Name(), ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
