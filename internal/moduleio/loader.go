package moduleio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rintaro/es6link/internal/loader"
	"github.com/rintaro/es6link/internal/logger"
)

// Loader resolves specifiers against a directory of *.mod.json files -
// moduleio's counterpart to loader.FSLoader, used whenever the address
// space is this package's JSON stand-in rather than real source files.
type Loader struct {
	Root string
}

func NewLoader(root string) *Loader {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Loader{Root: abs}
}

func (l *Loader) Locate(specifier string, referring *logger.Source) (loader.Address, bool) {
	dir := l.Root
	if referring != nil {
		dir = filepath.Dir(referring.KeyPath)
	}
	var base string
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		base = filepath.Join(dir, specifier)
	} else {
		base = filepath.Join(l.Root, specifier)
	}
	for _, candidate := range []string{base + ".mod.json", filepath.Join(base, "index.mod.json")} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return loader.Address(candidate), true
		}
	}
	return "", false
}

func (l *Loader) Canonicalize(addr loader.Address) loader.ModuleName {
	rel, err := filepath.Rel(l.Root, string(addr))
	if err != nil {
		rel = string(addr)
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".mod.json")
	return loader.CanonicalNameForAddress(rel)
}
