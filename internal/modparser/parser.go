// Package modparser implements the Parser Pass of spec §4.2: a single walk
// over a file's top-level statements that extracts import/export records,
// removes import declarations from the tree, and normalizes export
// declarations into plain declarations so the Rewriter Pass only ever sees
// ordinary var/function/class nodes. Other statements are left untouched.
package modparser

import (
	"fmt"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/logger"
	"github.com/rintaro/es6link/internal/module"
)

// SynthesizedDefaultExportName is the fresh local bound to an anonymous
// `export default <expr>` (spec §6).
const SynthesizedDefaultExportName = "$jscompDefaultExport"

// IsLegacyModule reports whether tree is already a script under an older
// module system (spec §4.2: "asks a collaborator whether the file is
// already a script under an older module system"). This minimal stand-in
// recognizes a leading `goog.module(...)` call, the one legacy-module
// marker this repo's domain cares about.
func IsLegacyModule(tree *ast.File) bool {
	if len(tree.Stmts) == 0 {
		return false
	}
	expr, ok := tree.Stmts[0].Data.(*ast.SExpr)
	if !ok {
		return false
	}
	call, ok := expr.Value.Data.(*ast.ECall)
	if !ok {
		return false
	}
	dot, ok := call.Target.Data.(*ast.EDot)
	if !ok || dot.Name != "module" {
		return false
	}
	ident, ok := dot.Target.Data.(*ast.EIdentifier)
	return ok && ident.Name == "goog"
}

// Parse extracts import/export entries from tree's top-level statements and
// rewrites export declarations in place, per spec §4.2. tree.Stmts is
// replaced with the import/export-free statement list the Rewriter Pass
// expects.
func Parse(tree *ast.File, log *logger.Log) *module.ParsedModule {
	if IsLegacyModule(tree) {
		return &module.ParsedModule{IsModule: false}
	}

	p := &parseState{tree: tree, log: log, seenLocalImportNames: map[string]bool{}, seenRequested: map[string]bool{}}

	out := make([]*ast.Stmt, 0, len(tree.Stmts))
	for _, stmt := range tree.Stmts {
		if rewritten := p.visitTopLevel(stmt); rewritten != nil {
			out = append(out, rewritten)
		}
	}
	tree.Stmts = out

	return &module.ParsedModule{
		IsModule:         true,
		RequestedModules: p.requested,
		ImportEntries:    p.importEntries,
		ExportEntries:    p.exportEntries,
	}
}

type parseState struct {
	tree *ast.File
	log  *logger.Log

	requested     []string
	seenRequested map[string]bool

	importEntries        []module.ImportEntry
	seenLocalImportNames map[string]bool

	exportEntries []module.ExportEntry
}

func (p *parseState) addRequested(specifier string) {
	if !p.seenRequested[specifier] {
		p.seenRequested[specifier] = true
		p.requested = append(p.requested, specifier)
	}
}

// visitTopLevel returns the statement that should remain in the tree (nil
// if the statement is an import/export declaration that's fully consumed).
func (p *parseState) visitTopLevel(stmt *ast.Stmt) *ast.Stmt {
	switch s := stmt.Data.(type) {
	case *ast.SImport:
		p.visitImport(s)
		return nil

	case *ast.SExportNamed:
		p.visitExportNamed(s)
		return nil

	case *ast.SExportStar:
		p.addRequested(s.FromSpecifier)
		p.exportEntries = append(p.exportEntries, starExportEntry(s.FromSpecifier, s.FromLoc))
		return nil

	case *ast.SExportDefault:
		return p.visitExportDefault(stmt, s)

	case *ast.SVarDecl:
		if s.Exported {
			s.Exported = false
			for _, d := range s.Decls {
				for _, n := range d.BoundNames() {
					p.exportEntries = append(p.exportEntries, localExportEntry(n.Name, n.Name, n.Loc))
				}
			}
		}
		return stmt

	case *ast.SFunctionDecl:
		if s.Exported {
			s.Exported = false
			p.exportEntries = append(p.exportEntries, localExportEntry(s.Name.Name, s.Name.Name, s.Name.Loc))
		}
		return stmt

	case *ast.SClassDecl:
		if s.Exported {
			s.Exported = false
			p.exportEntries = append(p.exportEntries, localExportEntry(s.Name.Name, s.Name.Name, s.Name.Loc))
		}
		return stmt

	default:
		return stmt
	}
}

func (p *parseState) visitImport(s *ast.SImport) {
	p.addRequested(s.Specifier)

	add := func(importName *string, local ast.LocalName) {
		if p.seenLocalImportNames[local.Name] {
			p.log.AddError(p.tree.Source, ast.RangeOfLoc(local.Loc), logger.MsgID_ES6_DuplicatedImportedBoundNames,
				fmt.Sprintf("duplicate imported binding name %q", local.Name))
			return
		}
		p.seenLocalImportNames[local.Name] = true
		p.importEntries = append(p.importEntries, module.ImportEntry{
			ModuleRequest: s.Specifier,
			ImportName:    importName,
			LocalName:     local.Name,
			Loc:           local.Loc,
		})
	}

	if s.Default != nil {
		name := "default"
		add(&name, *s.Default)
	}
	if s.Star != nil {
		add(nil, *s.Star)
	}
	for _, item := range s.Named {
		name := item.ImportedName
		add(&name, item.Local)
	}
}

func (p *parseState) visitExportNamed(s *ast.SExportNamed) {
	if s.FromSpecifier != nil {
		p.addRequested(*s.FromSpecifier)
		for _, spec := range s.Specifiers {
			p.exportEntries = append(p.exportEntries, module.ExportEntry{
				Kind:          module.ExportIndirectNamed,
				ExportName:    strPtr(spec.ExportedName),
				ModuleRequest: s.FromSpecifier,
				OrigName:      strPtr(spec.LocalName),
				Loc:           spec.Loc,
			})
		}
		return
	}
	for _, spec := range s.Specifiers {
		p.exportEntries = append(p.exportEntries, localExportEntry(spec.ExportedName, spec.LocalName, spec.Loc))
	}
}

func (p *parseState) visitExportDefault(stmt *ast.Stmt, s *ast.SExportDefault) *ast.Stmt {
	if s.Decl != nil {
		var name string
		switch d := s.Decl.Data.(type) {
		case *ast.SFunctionDecl:
			d.Exported = false
			name = d.Name.Name
		case *ast.SClassDecl:
			d.Exported = false
			name = d.Name.Name
		default:
			logger.Internal("export default with a Decl that is neither a function nor a class")
		}
		p.exportEntries = append(p.exportEntries, localExportEntry("default", name, stmt.Loc))
		return s.Decl
	}

	loc := stmt.Loc
	freshName := ast.LocalName{Name: SynthesizedDefaultExportName, Loc: loc}
	if p.tree.ModuleScope != nil {
		p.tree.ModuleScope.Declare(freshName.Name, loc)
	}
	p.exportEntries = append(p.exportEntries, localExportEntry("default", freshName.Name, loc))
	return &ast.Stmt{
		Loc: loc,
		Data: &ast.SVarDecl{
			Kind:  "var",
			Decls: []ast.Declarator{ast.SingleDeclarator(freshName, s.Expr)},
		},
	}
}

func localExportEntry(exportName, origName string, loc ast.Loc) module.ExportEntry {
	return module.ExportEntry{
		Kind:       module.ExportLocal,
		ExportName: strPtr(exportName),
		OrigName:   strPtr(origName),
		Loc:        loc,
	}
}

func starExportEntry(fromSpecifier string, loc ast.Loc) module.ExportEntry {
	return module.ExportEntry{
		Kind:          module.ExportStar,
		ModuleRequest: strPtr(fromSpecifier),
		Loc:           loc,
	}
}

func strPtr(s string) *string { return &s }
