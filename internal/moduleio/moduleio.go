// Package moduleio decodes the JSON tree format the CLI reads files in.
// A real lexer/parser is explicitly out of this spec's scope (spec §1): it
// is an external collaborator whose only contract with this linker is
// "hands over an *ast.File". This package is a concrete, honest stand-in for
// that handoff - every *.mod.json file under the configured root describes
// one already-parsed module, in the same shape internal/ast represents it.
package moduleio

import (
	"encoding/json"
	"fmt"

	"github.com/rintaro/es6link/internal/ast"
)

type fileJSON struct {
	UseStrict    bool       `json:"useStrict,omitempty"`
	FileOverview bool       `json:"fileOverview,omitempty"`
	Stmts        []stmtJSON `json:"stmts"`
}

type namedSpecJSON struct {
	Imported string `json:"imported"`
	Local    string `json:"local"`
}

type exportSpecJSON struct {
	Local    string `json:"local"`
	Exported string `json:"exported"`
}

type objPropJSON struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Shorthand bool   `json:"shorthand,omitempty"`
}

type declJSON struct {
	Name   string        `json:"name,omitempty"`
	Object []objPropJSON `json:"object,omitempty"`
	Init   *exprJSON     `json:"init,omitempty"`
}

type stmtJSON struct {
	Kind string `json:"kind"`

	// import / exportStar (exportStar reads only "specifier")
	Specifier string          `json:"specifier,omitempty"`
	Default   string          `json:"default,omitempty"`
	Star      string          `json:"star,omitempty"`
	Named     []namedSpecJSON `json:"named,omitempty"`

	// exportNamed
	Specifiers []exportSpecJSON `json:"specifiers,omitempty"`
	From       *string          `json:"from,omitempty"`

	// exportDefault
	DeclKind string    `json:"declKind,omitempty"` // "function" | "class"
	Expr     *exprJSON `json:"expr,omitempty"`

	// var / function / class
	VarKind  string     `json:"varKind,omitempty"`
	Decls    []declJSON `json:"decls,omitempty"`
	Exported bool       `json:"exported,omitempty"`
	Name     string     `json:"name,omitempty"`
	Params   []string   `json:"params,omitempty"`
	Body     []stmtJSON `json:"body,omitempty"`

	// expr
	Value *exprJSON `json:"value,omitempty"`
}

type exprJSON struct {
	Kind string `json:"kind"`

	Name   string      `json:"name,omitempty"`   // ident
	Target *exprJSON   `json:"target,omitempty"` // dot, call, assign
	Prop   string       `json:"prop,omitempty"`   // dot
	Args   []*exprJSON `json:"args,omitempty"`   // call
	Op     string      `json:"op,omitempty"`     // assign
	Right  *exprJSON   `json:"right,omitempty"`  // assign
	Str    string      `json:"str,omitempty"`    // string
	Num    float64     `json:"num,omitempty"`    // number
}

// Decode parses raw JSON into an *ast.File, including a freshly-built
// module scope (and one function/class/block scope per nested body) - the
// tree-traversal framework spec §1 also calls external is, here, just this
// decoder declaring names as it walks.
func Decode(raw []byte) (*ast.File, error) {
	var fj fileJSON
	if err := json.Unmarshal(raw, &fj); err != nil {
		return nil, fmt.Errorf("moduleio: %w", err)
	}

	scope := ast.NewScope(ast.ScopeModule, nil)
	stmts := make([]*ast.Stmt, 0, len(fj.Stmts))
	for _, sj := range fj.Stmts {
		st, err := decodeStmt(sj, scope)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}

	return &ast.File{
		Stmts:                  stmts,
		ModuleScope:            scope,
		HasUseStrictDirective:  fj.UseStrict,
		HasFileOverviewComment: fj.FileOverview,
	}, nil
}

func decodeStmt(sj stmtJSON, scope *ast.Scope) (*ast.Stmt, error) {
	switch sj.Kind {
	case "import":
		s := &ast.SImport{Specifier: sj.Specifier}
		if sj.Default != "" {
			ln := ast.LocalName{Name: sj.Default}
			s.Default = &ln
			scope.Declare(sj.Default, ast.Loc{})
		}
		if sj.Star != "" {
			ln := ast.LocalName{Name: sj.Star}
			s.Star = &ln
			scope.Declare(sj.Star, ast.Loc{})
		}
		for _, n := range sj.Named {
			s.Named = append(s.Named, ast.ImportSpecifier{ImportedName: n.Imported, Local: ast.LocalName{Name: n.Local}})
			scope.Declare(n.Local, ast.Loc{})
		}
		return &ast.Stmt{Data: s}, nil

	case "exportNamed":
		s := &ast.SExportNamed{FromSpecifier: sj.From}
		for _, sp := range sj.Specifiers {
			s.Specifiers = append(s.Specifiers, ast.ExportSpecifier{LocalName: sp.Local, ExportedName: sp.Exported})
		}
		return &ast.Stmt{Data: s}, nil

	case "exportStar":
		return &ast.Stmt{Data: &ast.SExportStar{FromSpecifier: sj.Specifier}}, nil

	case "exportDefault":
		if sj.DeclKind != "" {
			scope.Declare(sj.Name, ast.Loc{})
			name := ast.LocalName{Name: sj.Name}
			var decl ast.StmtData
			switch sj.DeclKind {
			case "function":
				decl = &ast.SFunctionDecl{Name: name, Exported: true}
			case "class":
				decl = &ast.SClassDecl{Name: name, Exported: true}
			default:
				return nil, fmt.Errorf("moduleio: unknown exportDefault declKind %q", sj.DeclKind)
			}
			return &ast.Stmt{Data: &ast.SExportDefault{Decl: &ast.Stmt{Data: decl}}}, nil
		}
		return &ast.Stmt{Data: &ast.SExportDefault{Expr: decodeExpr(sj.Expr)}}, nil

	case "var":
		decls := make([]ast.Declarator, 0, len(sj.Decls))
		for _, d := range sj.Decls {
			var init ast.Expr
			if d.Init != nil {
				init = decodeExpr(d.Init)
			}
			if len(d.Object) == 0 {
				scope.Declare(d.Name, ast.Loc{})
				decls = append(decls, ast.SingleDeclarator(ast.LocalName{Name: d.Name}, init))
				continue
			}
			props := make([]ast.ObjectPatternProperty, len(d.Object))
			for i, p := range d.Object {
				scope.Declare(p.Value, ast.Loc{})
				props[i] = ast.ObjectPatternProperty{Key: p.Key, Value: ast.LocalName{Name: p.Value}, Shorthand: p.Shorthand}
			}
			decls = append(decls, ast.Declarator{Pattern: ast.BindingPattern{Object: props}, Init: init})
		}
		return &ast.Stmt{Data: &ast.SVarDecl{Kind: sj.VarKind, Decls: decls, Exported: sj.Exported}}, nil

	case "function":
		scope.Declare(sj.Name, ast.Loc{})
		fnScope := ast.NewScope(ast.ScopeFunction, scope)
		params := make([]ast.LocalName, len(sj.Params))
		for i, p := range sj.Params {
			params[i] = ast.LocalName{Name: p}
			fnScope.Declare(p, ast.Loc{})
		}
		body, err := decodeBody(sj.Body, fnScope)
		if err != nil {
			return nil, err
		}
		return &ast.Stmt{Data: &ast.SFunctionDecl{Name: ast.LocalName{Name: sj.Name}, Params: params, Body: body, Scope: fnScope, Exported: sj.Exported}}, nil

	case "class":
		scope.Declare(sj.Name, ast.Loc{})
		clsScope := ast.NewScope(ast.ScopeClass, scope)
		body, err := decodeBody(sj.Body, clsScope)
		if err != nil {
			return nil, err
		}
		return &ast.Stmt{Data: &ast.SClassDecl{Name: ast.LocalName{Name: sj.Name}, Body: body, Scope: clsScope, Exported: sj.Exported}}, nil

	case "expr":
		return &ast.Stmt{Data: &ast.SExpr{Value: decodeExpr(sj.Value)}}, nil

	case "block":
		blkScope := ast.NewScope(ast.ScopeBlock, scope)
		body, err := decodeBody(sj.Body, blkScope)
		if err != nil {
			return nil, err
		}
		return &ast.Stmt{Data: &ast.SBlock{Stmts: body, Scope: blkScope}}, nil

	default:
		return nil, fmt.Errorf("moduleio: unknown statement kind %q", sj.Kind)
	}
}

func decodeBody(body []stmtJSON, scope *ast.Scope) ([]*ast.Stmt, error) {
	out := make([]*ast.Stmt, 0, len(body))
	for _, sj := range body {
		st, err := decodeStmt(sj, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func decodeExpr(e *exprJSON) ast.Expr {
	if e == nil {
		return ast.Expr{}
	}
	switch e.Kind {
	case "ident":
		return ast.Expr{Data: &ast.EIdentifier{Name: e.Name}}
	case "this":
		return ast.Expr{Data: &ast.EThis{}}
	case "dot":
		return ast.Expr{Data: &ast.EDot{Target: decodeExpr(e.Target), Name: e.Prop}}
	case "call":
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = decodeExpr(a)
		}
		return ast.Expr{Data: &ast.ECall{Target: decodeExpr(e.Target), Args: args}}
	case "assign":
		op := e.Op
		if op == "" {
			op = "="
		}
		return ast.Expr{Data: &ast.EAssign{Op: op, Target: decodeExpr(e.Target), Value: decodeExpr(e.Right)}}
	case "string":
		return ast.Expr{Data: &ast.EString{Value: e.Str}}
	case "number":
		return ast.Expr{Data: &ast.ENumber{Value: e.Num}}
	default:
		return ast.Expr{Data: &ast.EIdentifier{Name: "undefined"}}
	}
}
