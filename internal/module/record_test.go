package module_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/loader"
	"github.com/rintaro/es6link/internal/logger"
	"github.com/rintaro/es6link/internal/module"
)

func source(path string) *logger.Source {
	return &logger.Source{KeyPath: path, PrettyPath: path}
}

func strp(s string) *string { return &s }

// TestResolveExport_AmbiguousStarExport exercises spec §4.3.2 step 7: two
// star-exported modules that both export "x" under different bindings make
// "x" ambiguous, never a silent pick of either.
func TestResolveExport_AmbiguousStarExport(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{"a.js": "", "b.js": "", "c.js": ""})
	log := logger.NewLog()
	reg := module.NewRegistry(ld, log)

	a := reg.AddModule("a.js", "module$a", source("a.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule: true,
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportLocal, ExportName: strp("x"), OrigName: strp("x")},
		},
	})
	a.Tree.ModuleScope.Declare("x", ast.Loc{})

	b := reg.AddModule("b.js", "module$b", source("b.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule: true,
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportLocal, ExportName: strp("x"), OrigName: strp("y")},
		},
	})
	b.Tree.ModuleScope.Declare("y", ast.Loc{})

	c := reg.AddModule("c.js", "module$c", source("c.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule:         true,
		RequestedModules: []string{"./a.js", "./b.js"},
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportStar, ModuleRequest: strp("./a.js")},
			{Kind: module.ExportStar, ModuleRequest: strp("./b.js")},
		},
	})

	reg.InstantiateAll()

	res := c.ResolveExport(reg, "x")
	require.Equal(t, module.ResolutionAmbiguous, res.Kind)

	_, ok := c.ResolveExportExternal(reg, "x")
	require.False(t, ok, "an ambiguous resolution must never surface as found")
}

// TestResolveExport_StarExportAgreement: two export-star edges that both
// lead to the same binding are not ambiguous (spec §4.3.2 step 7). The
// direct edge to a.js finds it first; the edge through b.js reaches
// (a.js, "x") again, which the shared resolve set already holds, so that
// edge yields None and the single binding from a.js stands.
func TestResolveExport_StarExportAgreement(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{"a.js": "", "b.js": "", "c.js": ""})
	log := logger.NewLog()
	reg := module.NewRegistry(ld, log)

	a := reg.AddModule("a.js", "module$a", source("a.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule: true,
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportLocal, ExportName: strp("x"), OrigName: strp("x")},
		},
	})
	a.Tree.ModuleScope.Declare("x", ast.Loc{})

	reg.AddModule("b.js", "module$b", source("b.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule:         true,
		RequestedModules: []string{"./a.js"},
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportStar, ModuleRequest: strp("./a.js")},
		},
	})

	c := reg.AddModule("c.js", "module$c", source("c.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule:         true,
		RequestedModules: []string{"./a.js", "./b.js"},
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportStar, ModuleRequest: strp("./a.js")},
			{Kind: module.ExportStar, ModuleRequest: strp("./b.js")},
		},
	})

	reg.InstantiateAll()

	binding, ok := c.ResolveExportExternal(reg, "x")
	require.True(t, ok)
	require.Equal(t, a, binding.Module)
	require.Equal(t, "x", *binding.Name)
}

// TestResolveExport_DefaultNeverFromStar covers spec §4.3.2 step 5: a star
// re-export never contributes a "default" binding, even when the
// star-exported module has one.
func TestResolveExport_DefaultNeverFromStar(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{"a.js": "", "b.js": ""})
	log := logger.NewLog()
	reg := module.NewRegistry(ld, log)

	a := reg.AddModule("a.js", "module$a", source("a.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule: true,
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportLocal, ExportName: strp("default"), OrigName: strp("x")},
		},
	})
	a.Tree.ModuleScope.Declare("x", ast.Loc{})

	b := reg.AddModule("b.js", "module$b", source("b.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule:         true,
		RequestedModules: []string{"./a.js"},
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportStar, ModuleRequest: strp("./a.js")},
		},
	})

	reg.InstantiateAll()

	_, ok := b.ResolveExportExternal(reg, "default")
	require.False(t, ok)

	names, ok := b.GetExportedNames(reg)
	require.True(t, ok)
	require.False(t, names["default"])
}

// TestResolveExport_CircularStarExport covers spec §4.3.2 steps 1-2 and 6:
// two modules that each `export * from` the other must not infinite-loop,
// and resolve to None for a name neither of them actually declares.
func TestResolveExport_CircularStarExport(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{"a.js": "", "b.js": ""})
	log := logger.NewLog()
	reg := module.NewRegistry(ld, log)

	a := reg.AddModule("a.js", "module$a", source("a.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule:         true,
		RequestedModules: []string{"./b.js"},
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportStar, ModuleRequest: strp("./b.js")},
		},
	})

	reg.AddModule("b.js", "module$b", source("b.js"), &ast.File{ModuleScope: ast.NewScope(ast.ScopeModule, nil)}, &module.ParsedModule{
		IsModule:         true,
		RequestedModules: []string{"./a.js"},
		ExportEntries: []module.ExportEntry{
			{Kind: module.ExportStar, ModuleRequest: strp("./a.js")},
		},
	})

	reg.InstantiateAll()

	_, ok := a.ResolveExportExternal(reg, "nonexistent")
	require.False(t, ok)
}
