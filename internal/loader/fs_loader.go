package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rintaro/es6link/internal/logger"
)

// FSLoader resolves specifiers against the real file system, relative to
// Root. It supports the same suffix fallback as MapLoader
// (exact path, then .js, then .mjs, then <dir>/index.js) grounded on the
// teacher's resolveWithoutRemapping extension-fallback logic
// (internal/resolver/resolver.go), simplified down to this spec's
// relative-specifier-only scope (a real package resolver with
// node_modules/package.json/tsconfig lookup is out of scope per spec §1).
type FSLoader struct {
	Root string
}

func NewFSLoader(root string) *FSLoader {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &FSLoader{Root: abs}
}

func (f *FSLoader) Locate(specifier string, referring *logger.Source) (Address, bool) {
	var base string
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		dir := f.Root
		if referring != nil {
			dir = filepath.Dir(referring.KeyPath)
		}
		base = filepath.Join(dir, specifier)
	} else {
		base = filepath.Join(f.Root, specifier)
	}

	for _, candidate := range []string{base, base + ".js", base + ".mjs", filepath.Join(base, "index.js")} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return Address(candidate), true
		}
	}
	return "", false
}

func (f *FSLoader) Canonicalize(addr Address) ModuleName {
	rel, err := filepath.Rel(f.Root, string(addr))
	if err != nil {
		rel = string(addr)
	}
	return canonicalNameForAddress(filepath.ToSlash(rel))
}

func (f *FSLoader) ReadFile(addr Address) (string, error) {
	contents, err := os.ReadFile(string(addr))
	if err != nil {
		return "", err
	}
	return string(contents), nil
}
