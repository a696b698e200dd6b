package module

import (
	"fmt"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/loader"
	"github.com/rintaro/es6link/internal/logger"
)

// ParsedModule is the Parser Pass's output for one source file (spec §4.2),
// consumed by Registry.AddModule to build a Record. ExportEntries here are
// "raw": every entry is either ExportLocal (no "from"), ExportIndirectNamed
// or ExportIndirectNamespace (export {...} from 'mod'), or ExportStar
// (export * from 'mod'). AddModule is responsible for the further bucketing
// spec §4.4 describes (rewriting a local export of an imported name into an
// indirect export).
type ParsedModule struct {
	IsModule         bool
	RequestedModules []string
	ImportEntries    []ImportEntry
	ExportEntries    []ExportEntry
}

// Registry is the bidirectional name <-> Record map and the only place
// cross-module resolution happens (spec §4.4).
type Registry struct {
	byName  map[string]*Record
	loader  loader.Loader
	log     *logger.Log

	// failedSpecifiers[referringName][specifier] records a LOAD_ERROR so
	// InstantiateAll's indirect-export and import checks skip that specifier
	// instead of re-diagnosing the same failure.
	failedSpecifiers map[string]map[string]bool

	provides map[string][]string // canonical name -> its requires, for the external dependency sorter
}

func NewRegistry(ld loader.Loader, log *logger.Log) *Registry {
	return &Registry{
		byName:           make(map[string]*Record),
		loader:           ld,
		log:              log,
		failedSpecifiers: make(map[string]map[string]bool),
		provides:         make(map[string][]string),
	}
}

// AddModule builds a Record from one file's parse output and registers it.
// If parsed.IsModule is false (the parser pass determined the file is an
// older-module-system script), no Record is created and nil is returned -
// spec §4.2: "such files are treated as non-modules".
func (reg *Registry) AddModule(address, name string, source *logger.Source, tree *ast.File, parsed *ParsedModule) *Record {
	if !parsed.IsModule {
		return nil
	}

	rec := NewRecord(address, name, source, tree)
	rec.RequestedModules = parsed.RequestedModules

	for _, ie := range parsed.ImportEntries {
		rec.ImportsByLocal[ie.LocalName] = ie
	}

	seenExportNames := make(map[string]bool)
	for _, raw := range parsed.ExportEntries {
		switch raw.Kind {
		case ExportStar:
			rec.StarExports = append(rec.StarExports, raw)
			continue

		case ExportIndirectNamed, ExportIndirectNamespace:
			if reg.checkDuplicateExportName(rec, seenExportNames, raw) {
				rec.IndirectExports = append(rec.IndirectExports, raw)
			}
			continue

		case ExportLocal:
			if ie, ok := rec.ImportsByLocal[*raw.OrigName]; ok {
				// spec §4.4: "import x; export {x}" becomes indirect.
				rewritten := raw
				rewritten.ModuleRequest = &ie.ModuleRequest
				rewritten.OrigName = ie.ImportName
				if ie.ImportName == nil {
					rewritten.Kind = ExportIndirectNamespace
				} else {
					rewritten.Kind = ExportIndirectNamed
				}
				if reg.checkDuplicateExportName(rec, seenExportNames, rewritten) {
					rec.IndirectExports = append(rec.IndirectExports, rewritten)
				}
				continue
			}

			if !reg.checkDuplicateExportName(rec, seenExportNames, raw) {
				continue
			}
			if rec.Tree == nil || rec.Tree.ModuleScope == nil || rec.Tree.ModuleScope.Lookup(*raw.OrigName) == nil {
				reg.log.AddError(source, ast.RangeOfLoc(raw.Loc), logger.MsgID_ES6_ExportedBindingNotDeclared,
					fmt.Sprintf("%q is exported but never declared", *raw.OrigName))
				continue
			}
			rec.LocalExports = append(rec.LocalExports, raw)
		}
	}

	reg.byName[name] = rec
	return rec
}

func (reg *Registry) checkDuplicateExportName(rec *Record, seen map[string]bool, e ExportEntry) bool {
	if e.ExportName == nil {
		return true
	}
	if seen[*e.ExportName] {
		reg.log.AddError(rec.Source, ast.RangeOfLoc(e.Loc), logger.MsgID_ES6_DuplicatedExportNames,
			fmt.Sprintf("duplicate export name %q", *e.ExportName))
		return false
	}
	seen[*e.ExportName] = true
	return true
}

// ResolveImportedModule resolves a specifier requested by the module named
// referringName. It asks the loader afresh on every call and never emits a
// diagnostic itself - failures are diagnosed once, by InstantiateAll.
func (reg *Registry) ResolveImportedModule(referringName string, specifier string) (*Record, bool) {
	referring, ok := reg.byName[referringName]
	if !ok {
		return nil, false
	}
	addr, ok := reg.loader.Locate(specifier, referring.Source)
	if !ok {
		return nil, false
	}
	target, ok := reg.byName[string(reg.loader.Canonicalize(addr))]
	return target, ok
}

func (reg *Registry) GetModule(name string) (*Record, bool) {
	rec, ok := reg.byName[name]
	return rec, ok
}

func (reg *Registry) GetModuleNamespace(name string) (*Namespace, bool) {
	rec, ok := reg.byName[name]
	if !ok {
		return nil, false
	}
	return rec.GetNamespace(reg), true
}

func (reg *Registry) GetModuleName(rec *Record) string {
	return rec.Name
}

// AllModules returns every currently-registered record. Order is
// unspecified; callers that need determinism should sort by Name.
func (reg *Registry) AllModules() []*Record {
	out := make([]*Record, 0, len(reg.byName))
	for _, rec := range reg.byName {
		out = append(out, rec)
	}
	return out
}

// Requires returns the canonical names InstantiateAll resolved as
// dependencies of the module named by name, for the external dependency
// sorter (spec §4.4, §6 "Provided/required annotations").
func (reg *Registry) Requires(name string) []string {
	return reg.provides[name]
}

// InstantiateAll is the single validation pass described in spec §4.4. It
// must run exactly once, after every module has been added via AddModule
// and before the rewriter touches anything.
func (reg *Registry) InstantiateAll() {
	for name, rec := range reg.byName {
		reg.failedSpecifiers[name] = make(map[string]bool)
		var requires []string

		for _, specifier := range rec.RequestedModules {
			if _, ok := reg.ResolveImportedModule(name, specifier); !ok {
				reg.log.AddError(rec.Source, ast.Range{}, logger.MsgID_LoadError,
					fmt.Sprintf("could not load module %q", specifier))
				reg.failedSpecifiers[name][specifier] = true
				continue
			}
			requires = append(requires, string(reg.loader.Canonicalize(mustLocate(reg, name, specifier))))
		}

		for _, e := range rec.IndirectExports {
			if reg.failedSpecifiers[name][*e.ModuleRequest] {
				continue
			}
			if _, ok := rec.ResolveExportExternal(reg, *e.ExportName); !ok {
				reg.log.AddError(rec.Source, ast.RangeOfLoc(e.Loc), logger.MsgID_ES6_ResolveExportFailure,
					fmt.Sprintf("module %q does not export %q", *e.ModuleRequest, exportLookupName(e)))
			}
		}

		for local, ie := range rec.ImportsByLocal {
			if reg.failedSpecifiers[name][ie.ModuleRequest] {
				continue
			}
			if ie.ImportName == nil {
				continue // star imports always succeed: the namespace always exists
			}
			target, ok := reg.ResolveImportedModule(name, ie.ModuleRequest)
			if !ok {
				continue
			}
			if _, ok := target.ResolveExportExternal(reg, *ie.ImportName); !ok {
				reg.log.AddError(rec.Source, ast.RangeOfLoc(rec.ImportsByLocal[local].Loc), logger.MsgID_ES6_ResolveExportFailure,
					fmt.Sprintf("module %q does not export %q", ie.ModuleRequest, *ie.ImportName))
			}
		}

		reg.provides[name] = requires
	}

	reg.removeNonModules()
}

func exportLookupName(e ExportEntry) string {
	if e.OrigName != nil {
		return *e.OrigName
	}
	return "*"
}

func mustLocate(reg *Registry, referringName, specifier string) loader.Address {
	referring := reg.byName[referringName]
	addr, ok := reg.loader.Locate(specifier, referring.Source)
	if !ok {
		logger.Internal("mustLocate called after successful ResolveImportedModule but Locate failed for %q", specifier)
	}
	return addr
}

// removeNonModules demotes files with no imports, no exports, and no
// incoming imports to plain scripts per spec §4.4, so the rewriter leaves
// them untouched.
func (reg *Registry) removeNonModules() {
	incoming := make(map[string]bool)
	for name, rec := range reg.byName {
		for _, specifier := range rec.RequestedModules {
			if target, ok := reg.ResolveImportedModule(name, specifier); ok {
				incoming[target.Name] = true
			}
		}
	}

	for name, rec := range reg.byName {
		if len(rec.RequestedModules) == 0 && len(rec.ImportsByLocal) == 0 && len(rec.LocalExports) == 0 &&
			len(rec.IndirectExports) == 0 && len(rec.StarExports) == 0 && !incoming[name] {
			delete(reg.byName, name)
			delete(reg.provides, name)
		}
	}
}
