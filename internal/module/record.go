// Package module implements spec §3-§4.4: the Module Record and Module
// Registry at the heart of the linker. Records refer to each other only
// through the Registry, by canonical name - never by direct ownership -
// so that a cyclic module graph never requires a cyclic ownership graph
// (spec §9, "Shared module graph").
package module

import (
	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/logger"
)

// ImportEntry is one local name introduced by an import declaration.
// ImportName == nil means a star import (the whole namespace is bound).
// LocalName is always non-nil in this map's values: a side-effect-only
// `import 'mod'` introduces no entry at all.
type ImportEntry struct {
	ModuleRequest string
	ImportName    *string
	LocalName     string
	Loc           ast.Loc
}

// ExportEntryKind distinguishes the three shapes of spec §3's "Export-entry
// shapes" (indirect named and indirect namespace are kept separate here even
// though both carry ModuleRequest != nil, because only the latter has
// OrigName == nil).
type ExportEntryKind uint8

const (
	ExportLocal ExportEntryKind = iota
	ExportIndirectNamed
	ExportIndirectNamespace
	ExportStar
)

// ExportEntry is one entry of a module's local/indirect/star export list.
// ExportName is nil only for ExportStar entries. OrigName is nil for
// ExportIndirectNamespace and ExportStar entries. ModuleRequest is nil only
// for ExportLocal entries.
type ExportEntry struct {
	Kind          ExportEntryKind
	ExportName    *string
	ModuleRequest *string
	OrigName      *string
	Loc           ast.Loc
}

// Binding is a resolved reference (module, name). Name == nil denotes the
// module's namespace itself; that's only legal when the referring context
// dereferences it via a property access (spec §3 invariants).
type Binding struct {
	Module *Record
	Name   *string
}

func NamedBinding(rec *Record, name string) Binding {
	return Binding{Module: rec, Name: &name}
}

func NamespaceBinding(rec *Record) Binding {
	return Binding{Module: rec, Name: nil}
}

func (a Binding) Equal(b Binding) bool {
	if a.Module != b.Module {
		return false
	}
	if (a.Name == nil) != (b.Name == nil) {
		return false
	}
	return a.Name == nil || *a.Name == *b.Name
}

// ResolutionKind is the tag of a Resolution, per spec §9's design note
// preferring a tagged variant over a null-like sentinel.
type ResolutionKind uint8

const (
	ResolutionNone ResolutionKind = iota
	ResolutionFound
	ResolutionAmbiguous
)

// Resolution is the result of resolving one export name: found, absent, or
// the AMBIGUOUS sentinel from spec §4.3.2 step 7. AMBIGUOUS never escapes
// the resolver - see ResolveExportExternal.
type Resolution struct {
	Kind    ResolutionKind
	Binding Binding
}

var None = Resolution{Kind: ResolutionNone}
var Ambiguous = Resolution{Kind: ResolutionAmbiguous}

func Found(b Binding) Resolution {
	return Resolution{Kind: ResolutionFound, Binding: b}
}

// Namespace is the lazily-built, read-only object view of a module's
// exports. It never includes "default" (spec §3, §4.3.3).
type Namespace struct {
	record *Record
	names  map[string]bool
}

// Get resolves name through the namespace: only names that
// getExportedNames reported are visible, and the result is whatever
// resolveExport returns (which can itself be absent in pathological cycles).
func (ns *Namespace) Get(reg *Registry, name string) (Binding, bool) {
	if !ns.names[name] {
		return Binding{}, false
	}
	res := ns.record.ResolveExport(reg, name)
	if res.Kind != ResolutionFound {
		return Binding{}, false
	}
	return res.Binding, true
}

func (ns *Namespace) Names() map[string]bool {
	return ns.names
}

// Record is an immutable-after-construction value per source file (spec
// §3, §4.3). Its caches fill lazily as the resolver runs; nothing after
// construction mutates RequestedModules, ImportsByLocal, or the three
// export-entry lists.
type Record struct {
	Address string
	Name    string // canonical name, e.g. "module$foo"
	Source  *logger.Source
	Tree    *ast.File

	RequestedModules []string
	ImportsByLocal   map[string]ImportEntry

	LocalExports    []ExportEntry
	IndirectExports []ExportEntry
	StarExports     []ExportEntry

	namespace            *Namespace
	resolvedExportCache  map[string]*Resolution
}

func NewRecord(address, name string, source *logger.Source, tree *ast.File) *Record {
	return &Record{
		Address:              address,
		Name:                 name,
		Source:               source,
		Tree:                 tree,
		ImportsByLocal:       make(map[string]ImportEntry),
		resolvedExportCache:  make(map[string]*Resolution),
	}
}

type resolvePairKey struct {
	rec  *Record
	name string
}

// ResolveExport is the public wrapper around spec §4.3.2's algorithm. It
// memoizes on exportName - the memo distinguishes "not yet tried" (no map
// entry) from "resolved to nothing" (a *Resolution pointing at None), per
// spec §9's memoization note. The raw result (which may be Ambiguous) is
// what's cached and returned; callers outside the resolver should go
// through ResolveExportExternal instead, which downgrades Ambiguous to "not
// resolvable".
func (r *Record) ResolveExport(reg *Registry, name string) Resolution {
	if cached, ok := r.resolvedExportCache[name]; ok {
		return *cached
	}
	res := resolveExportStep(reg, r, name, make(map[resolvePairKey]bool), make(map[*Record]bool))
	r.resolvedExportCache[name] = &res
	return res
}

// ResolveExportExternal is how every caller outside the resolver itself
// should ask "what does this module export under this name". Per spec §7,
// an ambiguous resolution is downgraded here to "unresolvable" rather than
// surfacing AMBIGUOUS to code that isn't prepared to handle a third state.
func (r *Record) ResolveExportExternal(reg *Registry, name string) (Binding, bool) {
	res := r.ResolveExport(reg, name)
	if res.Kind != ResolutionFound {
		return Binding{}, false
	}
	return res.Binding, true
}

// resolveExportStep implements spec §4.3.2 exactly.
func resolveExportStep(reg *Registry, rec *Record, name string, resolveSet map[resolvePairKey]bool, exportStarSet map[*Record]bool) Resolution {
	// Step 1-2: circular import detection.
	key := resolvePairKey{rec, name}
	if resolveSet[key] {
		return None
	}
	resolveSet[key] = true

	// Step 3: local exports.
	for _, e := range rec.LocalExports {
		if e.ExportName != nil && *e.ExportName == name {
			return Found(NamedBinding(rec, *e.OrigName))
		}
	}

	// Step 4: indirect exports.
	for _, e := range rec.IndirectExports {
		if e.ExportName == nil || *e.ExportName != name {
			continue
		}
		target, ok := reg.ResolveImportedModule(rec.Name, *e.ModuleRequest)
		if !ok {
			return None
		}
		if e.OrigName == nil {
			return Found(NamespaceBinding(target))
		}
		return resolveExportStep(reg, target, *e.OrigName, resolveSet, exportStarSet)
	}

	// Step 5: "default" is never contributed by export *.
	if name == "default" {
		return None
	}

	// Step 6: cycle guard for the star-export fold.
	if exportStarSet[rec] {
		return None
	}
	exportStarSet[rec] = true

	// Step 7: fold across star exports, detecting ambiguity.
	result := None
	for _, e := range rec.StarExports {
		target, ok := reg.ResolveImportedModule(rec.Name, *e.ModuleRequest)
		if !ok {
			continue
		}
		sub := resolveExportStep(reg, target, name, resolveSet, exportStarSet)
		if sub.Kind == ResolutionAmbiguous {
			return Ambiguous
		}
		if sub.Kind != ResolutionFound {
			continue
		}
		if result.Kind == ResolutionFound {
			if !result.Binding.Equal(sub.Binding) {
				return Ambiguous
			}
			continue
		}
		result = sub
	}

	// Step 8.
	return result
}

// unresolvedStarExport is the distinguished marker getExportedNames
// propagates upward when a star-exported module fails to resolve (spec
// §4.3.1).
var unresolvedStarExport = struct{}{}

// GetExportedNames implements spec §4.3.1. The second return value is false
// iff some star-exported module failed to resolve, signalling a load error
// to the caller.
func (r *Record) GetExportedNames(reg *Registry) (map[string]bool, bool) {
	return getExportedNamesStep(reg, r, make(map[*Record]bool))
}

func getExportedNamesStep(reg *Registry, rec *Record, visited map[*Record]bool) (map[string]bool, bool) {
	if visited[rec] {
		return map[string]bool{}, true
	}
	visited[rec] = true

	names := make(map[string]bool)
	for _, e := range rec.LocalExports {
		names[*e.ExportName] = true
	}
	for _, e := range rec.IndirectExports {
		names[*e.ExportName] = true
	}
	for _, e := range rec.StarExports {
		target, ok := reg.ResolveImportedModule(rec.Name, *e.ModuleRequest)
		if !ok {
			_ = unresolvedStarExport
			return nil, false
		}
		subNames, ok := getExportedNamesStep(reg, target, visited)
		if !ok {
			return nil, false
		}
		for n := range subNames {
			if n != "default" {
				names[n] = true
			}
		}
	}
	return names, true
}

// GetNamespace lazily builds and caches this module's Namespace view. The
// module's own "default" export is left out of the view.
func (r *Record) GetNamespace(reg *Registry) *Namespace {
	if r.namespace == nil {
		names, ok := r.GetExportedNames(reg)
		if !ok {
			names = make(map[string]bool)
		}
		delete(names, "default")
		r.namespace = &Namespace{record: r, names: names}
	}
	return r.namespace
}
