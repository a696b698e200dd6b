package concat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/concat"
	"github.com/rintaro/es6link/internal/loader"
	"github.com/rintaro/es6link/internal/logger"
	"github.com/rintaro/es6link/internal/module"
)

func TestModules_JoinsInGivenOrderWithNameComments(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{"a.js": "", "b.js": ""})
	log := logger.NewLog()
	reg := module.NewRegistry(ld, log)

	src := func(p string) *logger.Source { return &logger.Source{KeyPath: p, PrettyPath: p} }
	strp := func(s string) *string { return &s }
	treeWith := func(name string) *ast.File {
		scope := ast.NewScope(ast.ScopeModule, nil)
		scope.Declare(name, ast.Loc{})
		return &ast.File{
			ModuleScope: scope,
			Stmts: []*ast.Stmt{
				{Data: &ast.SExpr{Value: ast.Expr{Data: &ast.EIdentifier{Name: name}}}},
			},
		}
	}

	// Each module exports its one identifier so InstantiateAll's
	// non-module demotion leaves it registered.
	reg.AddModule("a.js", "module$a", src("a.js"), treeWith("a"), &module.ParsedModule{
		IsModule:      true,
		ExportEntries: []module.ExportEntry{{Kind: module.ExportLocal, ExportName: strp("a"), OrigName: strp("a")}},
	})
	reg.AddModule("b.js", "module$b", src("b.js"), treeWith("b"), &module.ParsedModule{
		IsModule:      true,
		ExportEntries: []module.ExportEntry{{Kind: module.ExportLocal, ExportName: strp("b"), OrigName: strp("b")}},
	})
	reg.InstantiateAll()

	out := concat.Modules(reg, []string{"module$a", "module$b"})
	require.Contains(t, out, "// module$a")
	require.Contains(t, out, "// module$b")
	require.Less(t, indexOfSubstr(out, "// module$a"), indexOfSubstr(out, "// module$b"))
}

func TestModules_SkipsUnknownNames(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{})
	log := logger.NewLog()
	reg := module.NewRegistry(ld, log)

	out := concat.Modules(reg, []string{"module$missing"})
	require.Empty(t, out)
}

func indexOfSubstr(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
