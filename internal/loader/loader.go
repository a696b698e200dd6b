// Package loader is the external collaborator described in spec §4.1: it
// canonicalizes a specifier to an address and maps an address to a stable
// module name. The registry and resolver never reach into the file system
// or a module cache directly - they only ever call through this interface.
package loader

import (
	"path"
	"strings"

	"github.com/rintaro/es6link/internal/logger"
)

// Address is an opaque, loader-defined identifier for a resolved module. Two
// specifiers that resolve to the same module must produce equal addresses.
type Address string

// ModuleName is a canonical module identifier. It always begins with
// ModuleNamePrefix so the rewriter can recognize a module-namespace
// identifier by prefix alone (spec §4.1, §6).
type ModuleName string

const ModuleNamePrefix = "module$"

func (n ModuleName) String() string { return string(n) }

// Loader locates a specifier relative to a referring source and assigns it
// a canonical name. Implementations are free to interpret "specifier"
// however their host environment does (relative paths, bare package names,
// virtual namespaces, ...); the core never inspects Address or ModuleName
// beyond string equality and the ModuleNamePrefix check.
type Loader interface {
	Locate(specifier string, referring *logger.Source) (Address, bool)
	Canonicalize(addr Address) ModuleName
}

// MapLoader is an in-memory loader used by tests: specifiers are resolved
// relative to the referring source's directory exactly like FSLoader, but
// against a map instead of the real file system.
type MapLoader struct {
	// Files maps an address (a normalized path, see normalizeAddress) to its
	// source contents.
	Files map[string]string
}

func NewMapLoader(files map[string]string) *MapLoader {
	normalized := make(map[string]string, len(files))
	for addr, contents := range files {
		normalized[normalizeAddress(addr)] = contents
	}
	return &MapLoader{Files: normalized}
}

func (m *MapLoader) Locate(specifier string, referring *logger.Source) (Address, bool) {
	addr := resolveRelative(specifier, referring)
	if _, ok := tryExtensions(addr, m.Files); ok {
		resolved, _ := tryExtensions(addr, m.Files)
		return Address(resolved), true
	}
	return "", false
}

func (m *MapLoader) Canonicalize(addr Address) ModuleName {
	return canonicalNameForAddress(string(addr))
}

func tryExtensions(addr string, files map[string]string) (string, bool) {
	candidates := []string{addr, addr + ".js", addr + ".mjs", addr + "/index.js"}
	for _, c := range candidates {
		if _, ok := files[c]; ok {
			return c, true
		}
	}
	return "", false
}

func resolveRelative(specifier string, referring *logger.Source) string {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		// Bare specifiers are addressed by their own text; a real package
		// resolver is out of this spec's scope.
		return normalizeAddress(specifier)
	}
	dir := "."
	if referring != nil {
		dir = path.Dir(referring.KeyPath)
	}
	return normalizeAddress(path.Join(dir, specifier))
}

func normalizeAddress(addr string) string {
	return path.Clean(strings.TrimPrefix(addr, "./"))
}

// CanonicalNameForAddress exposes canonicalNameForAddress to other loader
// implementations (e.g. a JSON-fixture loader) that need the same
// identifier-safe naming scheme but resolve addresses their own way.
func CanonicalNameForAddress(relPath string) ModuleName {
	return canonicalNameForAddress(relPath)
}

// canonicalNameForAddress turns a path-like address into an identifier-safe
// canonical name, in the style of esbuild's "module$" symbol prefixing: a
// trailing ".js" or ".mjs" is dropped, and any character that isn't a
// letter, digit, or underscore becomes "$" (so "dir/a.js" becomes
// "module$dir$a"). A leading digit is avoided by construction (the name
// always starts with the prefix).
func canonicalNameForAddress(addr string) ModuleName {
	addr = strings.TrimSuffix(addr, ".js")
	addr = strings.TrimSuffix(addr, ".mjs")
	var b strings.Builder
	b.WriteString(ModuleNamePrefix)
	for _, r := range addr {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('$')
		}
	}
	return ModuleName(b.String())
}
