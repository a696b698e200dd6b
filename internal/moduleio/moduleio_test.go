package moduleio_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/moduleio"
)

func TestDecode_ImportVarAndExportDefault(t *testing.T) {
	raw := []byte(`{
		"useStrict": true,
		"stmts": [
			{"kind": "import", "specifier": "./a.js", "default": "a", "named": [{"imported": "x", "local": "y"}]},
			{"kind": "var", "varKind": "let", "decls": [{"name": "z", "init": {"kind": "number", "num": 1}}]},
			{"kind": "exportDefault", "expr": {"kind": "ident", "name": "z"}}
		]
	}`)

	file, err := moduleio.Decode(raw)
	require.NoError(t, err)
	require.True(t, file.HasUseStrictDirective)

	want := []*ast.Stmt{
		{Data: &ast.SImport{
			Specifier: "./a.js",
			Default:   &ast.LocalName{Name: "a"},
			Named:     []ast.ImportSpecifier{{ImportedName: "x", Local: ast.LocalName{Name: "y"}}},
		}},
		{Data: &ast.SVarDecl{
			Kind:  "let",
			Decls: []ast.Declarator{ast.SingleDeclarator(ast.LocalName{Name: "z"}, ast.Expr{Data: &ast.ENumber{Value: 1}})},
		}},
		{Data: &ast.SExportDefault{Expr: ast.Expr{Data: &ast.EIdentifier{Name: "z"}}}},
	}

	if diff := cmp.Diff(want, file.Stmts); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{"a", "y", "z"} {
		require.NotNil(t, file.ModuleScope.Lookup(name), "expected %q declared in module scope", name)
	}
}

func TestDecode_FunctionBuildsNestedScope(t *testing.T) {
	raw := []byte(`{
		"stmts": [
			{"kind": "function", "name": "f", "params": ["p"], "body": [
				{"kind": "expr", "value": {"kind": "ident", "name": "p"}}
			]}
		]
	}`)

	file, err := moduleio.Decode(raw)
	require.NoError(t, err)
	require.Len(t, file.Stmts, 1)

	fn := file.Stmts[0].Data.(*ast.SFunctionDecl)
	require.Equal(t, "f", fn.Name.Name)
	require.NotNil(t, file.ModuleScope.Lookup("f"))

	// "p" is a parameter, declared in the function's own scope, not the
	// module scope the rewriter consults for cross-module renaming.
	require.Nil(t, file.ModuleScope.Lookup("p"))
	require.NotNil(t, fn.Scope.Lookup("p"))
	require.Equal(t, ast.ScopeFunction, fn.Scope.Kind)
}

func TestDecode_UnknownStatementKindErrors(t *testing.T) {
	_, err := moduleio.Decode([]byte(`{"stmts": [{"kind": "nope"}]}`))
	require.Error(t, err)
}
