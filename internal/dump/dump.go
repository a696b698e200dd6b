// Package dump is a debug reconstruction of a syntax tree back into
// readable pseudo-JavaScript. It is not a real code generator - a faithful
// printer/minifier belongs to the downstream collaborator spec §1 names as
// out of scope - but the CLI needs something to show for a `link` run, so
// this renders the tree closely enough to read and diff by eye.
package dump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rintaro/es6link/internal/ast"
)

// File renders file's current statement list. Call it after the Rewriter
// Pass to see the linked output; called before, it shows the Parser Pass's
// import/export-free normalization.
func File(file *ast.File) string {
	var b strings.Builder
	if file.HasUseStrictDirective {
		b.WriteString("\"use strict\";\n")
	}
	for _, s := range file.Stmts {
		stmt(&b, s, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
}

func stmt(b *strings.Builder, s *ast.Stmt, level int) {
	indent(b, level)
	switch d := s.Data.(type) {
	case *ast.SVarDecl:
		b.WriteString(d.Kind)
		b.WriteString(" ")
		for i, decl := range d.Decls {
			if i > 0 {
				b.WriteString(", ")
			}
			pattern(b, decl.Pattern)
			if decl.Init.Data != nil {
				b.WriteString(" = ")
				expr(b, decl.Init)
			}
		}
		b.WriteString(";\n")

	case *ast.SFunctionDecl:
		fmt.Fprintf(b, "function %s(", d.Name.Name)
		for i, p := range d.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
		}
		b.WriteString(") {\n")
		for _, body := range d.Body {
			stmt(b, body, level+1)
		}
		indent(b, level)
		b.WriteString("}\n")

	case *ast.SClassDecl:
		fmt.Fprintf(b, "class %s {\n", d.Name.Name)
		for _, body := range d.Body {
			stmt(b, body, level+1)
		}
		indent(b, level)
		b.WriteString("}\n")

	case *ast.SExpr:
		expr(b, d.Value)
		b.WriteString(";\n")

	case *ast.SBlock:
		b.WriteString("{\n")
		for _, body := range d.Stmts {
			stmt(b, body, level+1)
		}
		indent(b, level)
		b.WriteString("}\n")

	// Remaining kinds (SImport, SExportNamed, SExportStar, SExportDefault)
	// never reach here: the Parser Pass consumes or unwraps every one of
	// them before the Rewriter Pass runs.
	default:
		fmt.Fprintf(b, "/* unprintable statement %T */\n", d)
	}
}

func pattern(b *strings.Builder, p ast.BindingPattern) {
	if p.Single != nil {
		b.WriteString(p.Single.Name)
		return
	}
	b.WriteString("{")
	for i, prop := range p.Object {
		if i > 0 {
			b.WriteString(", ")
		}
		if prop.Shorthand || prop.Key == prop.Value.Name {
			b.WriteString(prop.Key)
		} else {
			fmt.Fprintf(b, "%s: %s", prop.Key, prop.Value.Name)
		}
	}
	b.WriteString("}")
}

func expr(b *strings.Builder, e ast.Expr) {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		b.WriteString(d.Name)
	case *ast.EThis:
		b.WriteString("this")
	case *ast.EDot:
		expr(b, d.Target)
		b.WriteString(".")
		b.WriteString(d.Name)
	case *ast.ECall:
		expr(b, d.Target)
		b.WriteString("(")
		for i, a := range d.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			expr(b, a)
		}
		b.WriteString(")")
	case *ast.EAssign:
		expr(b, d.Target)
		b.WriteString(" ")
		b.WriteString(d.Op)
		b.WriteString(" ")
		expr(b, d.Value)
	case *ast.EString:
		fmt.Fprintf(b, "%q", d.Value)
	case *ast.ENumber:
		b.WriteString(strconv.FormatFloat(d.Value, 'g', -1, 64))
	default:
		fmt.Fprintf(b, "/* unprintable expression %T */", d)
	}
}
