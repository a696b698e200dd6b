package modparser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/logger"
	"github.com/rintaro/es6link/internal/module"
	"github.com/rintaro/es6link/internal/modparser"
)

func newLog() *logger.Log { return logger.NewLog() }

func TestParse_ExportVarBecomesLocalExport(t *testing.T) {
	tree := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SVarDecl{Kind: "var", Decls: []ast.Declarator{ast.SingleDeclarator(ast.LocalName{Name: "x"}, ast.Expr{Data: &ast.ENumber{Value: 1}})}, Exported: true}},
		},
		ModuleScope: ast.NewScope(ast.ScopeModule, nil),
	}

	parsed := modparser.Parse(tree, newLog())

	require.True(t, parsed.IsModule)
	require.Len(t, parsed.ExportEntries, 1)
	e := parsed.ExportEntries[0]
	require.Equal(t, module.ExportLocal, e.Kind)
	require.Equal(t, "x", *e.ExportName)
	require.Equal(t, "x", *e.OrigName)

	// The parser clears the Exported flag and keeps the declaration itself.
	require.Len(t, tree.Stmts, 1)
	decl := tree.Stmts[0].Data.(*ast.SVarDecl)
	require.False(t, decl.Exported)
}

func TestParse_AnonymousDefaultExportSynthesizesName(t *testing.T) {
	tree := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SExportDefault{Expr: ast.Expr{Data: &ast.ENumber{Value: 42}}}},
		},
		ModuleScope: ast.NewScope(ast.ScopeModule, nil),
	}

	parsed := modparser.Parse(tree, newLog())

	require.Len(t, parsed.ExportEntries, 1)
	require.Equal(t, "default", *parsed.ExportEntries[0].ExportName)
	require.Equal(t, modparser.SynthesizedDefaultExportName, *parsed.ExportEntries[0].OrigName)

	require.Len(t, tree.Stmts, 1)
	decl := tree.Stmts[0].Data.(*ast.SVarDecl)
	require.Equal(t, "var", decl.Kind)
	require.Equal(t, modparser.SynthesizedDefaultExportName, decl.Decls[0].Pattern.Single.Name)
}

func TestParse_NamedDefaultExportKeepsDeclarationName(t *testing.T) {
	tree := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SExportDefault{Decl: &ast.Stmt{Data: &ast.SFunctionDecl{Name: ast.LocalName{Name: "doThing"}, Exported: true}}}},
		},
		ModuleScope: ast.NewScope(ast.ScopeModule, nil),
	}

	parsed := modparser.Parse(tree, newLog())

	require.Len(t, parsed.ExportEntries, 1)
	require.Equal(t, "default", *parsed.ExportEntries[0].ExportName)
	require.Equal(t, "doThing", *parsed.ExportEntries[0].OrigName)

	require.Len(t, tree.Stmts, 1)
	fn := tree.Stmts[0].Data.(*ast.SFunctionDecl)
	require.Equal(t, "doThing", fn.Name.Name)
	require.False(t, fn.Exported)
}

func TestParse_DuplicateImportedBoundNamesDiagnosed(t *testing.T) {
	tree := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SImport{
				Specifier: "./a.js",
				Named: []ast.ImportSpecifier{
					{ImportedName: "x", Local: ast.LocalName{Name: "n"}},
					{ImportedName: "y", Local: ast.LocalName{Name: "n"}},
				},
			}},
		},
		ModuleScope: ast.NewScope(ast.ScopeModule, nil),
	}

	log := newLog()
	parsed := modparser.Parse(tree, log)

	require.True(t, log.HasErrors())
	require.Len(t, parsed.ImportEntries, 1)
	require.Equal(t, "x", *parsed.ImportEntries[0].ImportName)
}

func TestParse_ExportFromBecomesIndirect(t *testing.T) {
	tree := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SExportNamed{
				Specifiers:    []ast.ExportSpecifier{{LocalName: "x", ExportedName: "y"}},
				FromSpecifier: strp("./a.js"),
			}},
		},
		ModuleScope: ast.NewScope(ast.ScopeModule, nil),
	}

	parsed := modparser.Parse(tree, newLog())

	require.Len(t, parsed.ExportEntries, 1)
	e := parsed.ExportEntries[0]
	require.Equal(t, module.ExportIndirectNamed, e.Kind)
	require.Equal(t, "y", *e.ExportName)
	require.Equal(t, "x", *e.OrigName)
	require.Equal(t, "./a.js", *e.ModuleRequest)
	require.Contains(t, parsed.RequestedModules, "./a.js")
}

func TestIsLegacyModule(t *testing.T) {
	legacy := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SExpr{Value: ast.Expr{Data: &ast.ECall{
				Target: ast.Expr{Data: &ast.EDot{Target: ast.Expr{Data: &ast.EIdentifier{Name: "goog"}}, Name: "module"}},
				Args:   []ast.Expr{{Data: &ast.EString{Value: "some.ns"}}},
			}}}},
		},
	}
	require.True(t, modparser.IsLegacyModule(legacy))

	notLegacy := &ast.File{
		Stmts: []*ast.Stmt{
			{Data: &ast.SExpr{Value: ast.Expr{Data: &ast.EIdentifier{Name: "x"}}}},
		},
	}
	require.False(t, modparser.IsLegacyModule(notLegacy))
}

func strp(s string) *string { return &s }
