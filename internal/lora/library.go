// Package lora exposes the adapter (LoRA) directory to the orchestration
// core: existence checks during binding and enumeration for API responses.
package lora

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Extensions lists the accepted adapter file extensions, in lookup order.
var Extensions = []string{".safetensors", ".pt", ".ckpt"}

// Library scans a directory of adapter weight files. The directory is
// re-scanned on every call so freshly uploaded adapters are visible without a
// restart.
type Library struct {
	dir string
}

// NewLibrary creates a library rooted at dir. The directory does not need to
// exist yet; a missing directory simply lists no adapters.
func NewLibrary(dir string) *Library {
	return &Library{dir: strings.TrimSpace(dir)}
}

// Exists reports whether an adapter named name (with or without an accepted
// extension) is present in the directory.
func (l *Library) Exists(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return false
	}
	for _, ext := range Extensions {
		if info, err := os.Stat(filepath.Join(l.dir, base+ext)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// List returns all adapter filenames found in the directory, sorted. A
// missing or unreadable directory yields an empty list, never an error.
func (l *Library) List() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if hasAdapterExtension(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Count returns the number of available adapters.
func (l *Library) Count() int {
	return len(l.List())
}

var titleCaser = cases.Title(language.English)

// DisplayName turns an adapter filename into a presentable label:
// "cyber_punk.safetensors" becomes "Cyber Punk".
func DisplayName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return titleCaser.String(strings.TrimSpace(base))
}

func hasAdapterExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, accepted := range Extensions {
		if ext == accepted {
			return true
		}
	}
	return false
}
