package rewriter

import (
	"strings"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/logger"
)

// applyGoogRequireTransform implements spec §4.6: a separate, shallow
// pre-rename traversal over top-level statements only (goog.require is only
// ever legal at a module's top level) that looks for the
// `const <pattern> = goog.require('<ns>')` shape and normalizes it before the
// main rename pass runs:
//
//   - the `goog.require(...)` call is hoisted into its own expression
//     statement immediately preceding the declaration;
//   - the declaration's initializer becomes a qualified-name reference
//     (`foo.bar.baz`) built from the required namespace string;
//   - a non-`const` declarator is diagnosed;
//   - shorthand destructuring is canonicalized to longhand.
//
// It never touches cross-module resolution - "<ns>" is a legacy
// goog.module namespace string, opaque to this linker.
func applyGoogRequireTransform(rw *rewriter) {
	out := make([]*ast.Stmt, 0, len(rw.rec.Tree.Stmts))
	for _, stmt := range rw.rec.Tree.Stmts {
		decl, ok := stmt.Data.(*ast.SVarDecl)
		if !ok || len(decl.Decls) != 1 {
			out = append(out, stmt)
			continue
		}
		d := &decl.Decls[0]
		ns, ok := googRequireNamespace(d.Init)
		if !ok {
			out = append(out, stmt)
			continue
		}

		if decl.Kind != "const" {
			rw.log.AddError(rw.rec.Source, ast.RangeOfLoc(stmt.Loc), logger.MsgID_LHSOfGoogRequireMustBeConst,
				"the left-hand side of a goog.require() assignment must be const")
		}

		canonicalizeShorthand(&d.Pattern)

		hoisted := &ast.Stmt{Loc: stmt.Loc, Data: &ast.SExpr{Value: d.Init}}
		d.Init = qualifiedNameExpr(ns, d.Init.Loc)

		out = append(out, hoisted, stmt)
	}
	rw.rec.Tree.Stmts = out
}

// googRequireNamespace reports whether e is a `goog.require('<ns>')` call
// and, if so, returns the required namespace string.
func googRequireNamespace(e ast.Expr) (string, bool) {
	if e.Data == nil {
		return "", false
	}
	call, ok := e.Data.(*ast.ECall)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	dot, ok := call.Target.Data.(*ast.EDot)
	if !ok || dot.Name != "require" {
		return "", false
	}
	ident, ok := dot.Target.Data.(*ast.EIdentifier)
	if !ok || ident.Name != "goog" {
		return "", false
	}
	str, ok := call.Args[0].Data.(*ast.EString)
	if !ok {
		return "", false
	}
	return str.Value, true
}

// qualifiedNameExpr builds the dotted-member-access expression `a.b.c` for
// a namespace string "a.b.c", anchored at loc since this AST doesn't track
// individual dot-token positions for a synthesized node.
func qualifiedNameExpr(ns string, loc ast.Loc) ast.Expr {
	parts := strings.Split(ns, ".")
	expr := ast.Expr{Loc: loc, Data: &ast.EIdentifier{Name: parts[0]}}
	for _, p := range parts[1:] {
		expr = ast.Expr{Loc: loc, Data: &ast.EDot{Target: expr, Name: p, NameLoc: loc}}
	}
	return expr
}

// canonicalizeShorthand rewrites `const {a} = goog.require(...)` into the
// longhand `const {a: a} = ...` shape, per spec §9 open question (b): only
// the pattern's top-level keys are canonicalized, matching this AST's
// single-level object-pattern representation.
func canonicalizeShorthand(p *ast.BindingPattern) {
	for i := range p.Object {
		p.Object[i].Shorthand = false
	}
}
