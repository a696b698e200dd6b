// Package ast holds the already-parsed syntax tree that the module linker
// operates on. A real lexer/parser and a generic tree-traversal framework
// are out of this spec's scope (spec §1); this is the minimal shape of tree
// those collaborators would hand to the Parser Pass and Rewriter Pass.
package ast

import "github.com/rintaro/es6link/internal/logger"

type Loc = logger.Loc
type Range = logger.Range

// LocalName is an identifier bound at the point it's declared: a var/let/const
// name, a function or class name, an import's local binding, or a bound
// parameter.
type LocalName struct {
	Name string
	Loc  Loc
}

// ScopeKind distinguishes module scope (where import/export bindings live)
// from nested scopes that merely shadow a module-level name.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeClass
)

// Scope is a flat symbol table for one lexical level. The rewriter walks up
// Parent to find which scope (if any) declares a given name; if the
// declaring scope isn't the module scope, the name is local and untouched.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope
	Names  map[string]Loc
}

func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, Names: make(map[string]Loc)}
}

func (s *Scope) Declare(name string, loc Loc) {
	s.Names[name] = loc
}

// Lookup returns the innermost scope in the chain starting at s that
// declares name, or nil if no scope in the chain declares it.
func (s *Scope) Lookup(name string) *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		if _, ok := scope.Names[name]; ok {
			return scope
		}
	}
	return nil
}

// File is one source file's syntax tree, already free of surrounding
// whitespace/comment concerns except for the JSDoc comments attached to
// individual statements.
type File struct {
	Source      *logger.Source
	Stmts       []*Stmt
	ModuleScope *Scope

	// Whether a directive prologue already contains "use strict". The
	// Rewriter Pass's script-root normalization sets this to true when it
	// adds the directive itself (spec §4.5 "Script root").
	HasUseStrictDirective bool

	// Whether a file-overview JSDoc comment is present on the first statement.
	// Set to true by the Rewriter Pass's script-root normalization when it
	// synthesizes one (FileOverviewJSDoc holds the synthesized comment).
	HasFileOverviewComment bool

	// FileOverviewJSDoc is the file-overview comment the Rewriter Pass
	// synthesized, when HasFileOverviewComment was false on entry. Nil when
	// the file already carried its own (HasFileOverviewComment was already
	// true and nothing needed synthesizing).
	FileOverviewJSDoc *JSDocComment

	// SuppressedDiagnostics names downstream-pass warning categories the
	// script-root normalization has asked to suppress for this file (spec
	// §4.5: "record a suppression set covering unresolved-provide/require
	// warnings"). Downstream tooling (the external dependency sorter, spec
	// §1) consults this the way it would an in-source `@suppress` tag.
	SuppressedDiagnostics []string
}

// JSDocTypeRef is one embedded type name found inside a JSDoc comment, e.g.
// the "foo.Bar" in "@type {foo.Bar}". Offsets are relative to the start of
// the owning JSDocComment.Raw string.
type JSDocTypeRef struct {
	Range Range
	Text  string
}

type JSDocComment struct {
	Raw      string
	TypeRefs []JSDocTypeRef
}

// Stmt is a top-level (or nested) statement node.
type Stmt struct {
	Loc  Loc
	Data StmtData

	// Present only on top-level statements that carry a doc comment.
	JSDoc *JSDocComment
}

type StmtData interface{ isStmt() }

// SImport represents one "import ..." declaration. Default may be populated
// together with Star or Named (`import d, * as ns from 'mod'`,
// `import d, {a} from 'mod'`); a bare `import 'mod';` has none of them.
type SImport struct {
	Specifier    string
	SpecifierLoc Loc

	Default *LocalName // import x from 'mod'
	Star    *LocalName // import * as ns from 'mod'
	Named   []ImportSpecifier
}

type ImportSpecifier struct {
	ImportedName string
	Local        LocalName
}

func (*SImport) isStmt() {}

// ExportSpecifier is one entry of `export {a as b}` or `export {a as b} from 'mod'`.
type ExportSpecifier struct {
	LocalName    string // meaningless when FromSpecifier != nil
	ExportedName string
	Loc          Loc
}

// SExportNamed represents `export {a as b, c}` with or without `from`.
type SExportNamed struct {
	Specifiers    []ExportSpecifier
	FromSpecifier *string
	FromLoc       Loc
}

func (*SExportNamed) isStmt() {}

// SExportStar represents `export * from 'mod'`.
type SExportStar struct {
	FromSpecifier string
	FromLoc       Loc
}

func (*SExportStar) isStmt() {}

// SExportDefault represents `export default ...`. Decl is non-nil for a
// named function/class default export; Expr is used for every other
// expression, including an anonymous function/class.
type SExportDefault struct {
	Decl *Stmt // *SFunctionDecl or *SClassDecl, always named after parsing
	Expr Expr  // valid iff Decl == nil
}

func (*SExportDefault) isStmt() {}

// SVarDecl represents `var/let/const a = ..., b = ...;`. Declared names may
// themselves have been exported via SExportNamed pointing back at them, or
// may originate from an `export var ...` the parser pass stripped down to
// this plain node.
type SVarDecl struct {
	Kind     string // "var", "let", or "const"
	Decls    []Declarator
	Exported bool // true for "export var ..."; the parser pass clears this
}

// Declarator is one `pattern = init` of a var/let/const declaration. Pattern
// is a single identifier for every ordinary declaration; it's an object
// pattern only for the `const {a, b: c} = goog.require(...)` shape the
// goog.require transform canonicalizes (spec §4.6).
type Declarator struct {
	Pattern BindingPattern
	Init    Expr // nil if uninitialized
}

// BoundNames returns every identifier this declarator introduces, in
// pattern order.
func (d Declarator) BoundNames() []LocalName {
	return d.Pattern.BoundNames()
}

// SingleDeclarator is a convenience for the overwhelmingly common case of a plain
// `name = init` declarator.
func SingleDeclarator(name LocalName, init Expr) Declarator {
	return Declarator{Pattern: BindingPattern{Single: &name}, Init: init}
}

func (*SVarDecl) isStmt() {}

type SFunctionDecl struct {
	Name     LocalName
	Params   []LocalName
	Body     []*Stmt
	Scope    *Scope // function scope, built alongside the tree
	Exported bool   // true for "export function ..."; the parser pass clears this
}

func (*SFunctionDecl) isStmt() {}

type SClassDecl struct {
	Name     LocalName
	Body     []*Stmt
	Scope    *Scope
	Exported bool // true for "export class ..."; the parser pass clears this
}

func (*SClassDecl) isStmt() {}

type SExpr struct {
	Value Expr
}

func (*SExpr) isStmt() {}

type SBlock struct {
	Stmts []*Stmt
	Scope *Scope
}

func (*SBlock) isStmt() {}

// BindingPattern is the left-hand side of a declarator. It is either a
// single identifier or an object pattern (only top-level keys are
// canonicalized per spec §9 open question (b) - this AST has no nested
// pattern representation).
type BindingPattern struct {
	Single *LocalName
	Object []ObjectPatternProperty // nil unless this is `{a, b: c}`
}

func (p BindingPattern) BoundNames() []LocalName {
	if p.Single != nil {
		return []LocalName{*p.Single}
	}
	names := make([]LocalName, len(p.Object))
	for i, prop := range p.Object {
		names[i] = prop.Value
	}
	return names
}

type ObjectPatternProperty struct {
	Key       string
	KeyLoc    Loc
	Value     LocalName
	Shorthand bool
}

// Expr is an expression node.
type Expr struct {
	Loc  Loc
	Data ExprData
}

type ExprData interface{ isExpr() }

type EIdentifier struct {
	Name string
}

func (*EIdentifier) isExpr() {}

type EThis struct{}

func (*EThis) isExpr() {}

// EDot represents `target.prop`.
type EDot struct {
	Target  Expr
	Name    string
	NameLoc Loc
}

func (*EDot) isExpr() {}

// ECall represents `target(args...)`. IsFreeCall is set by the rewriter when
// a namespace-collapsing substitution removes the implicit `this` receiver.
type ECall struct {
	Target     Expr
	Args       []Expr
	IsFreeCall bool
}

func (*ECall) isExpr() {}

// EAssign represents `target = value` (and compound-assignment operators,
// tracked only by Op since this spec only cares whether Target is written).
type EAssign struct {
	Op     string
	Target Expr
	Value  Expr
}

func (*EAssign) isExpr() {}

type EString struct{ Value string }

func (*EString) isExpr() {}

type ENumber struct{ Value float64 }

func (*ENumber) isExpr() {}

// RangeOfLoc returns a zero-length range anchored at loc, suitable when the
// exact token length isn't tracked by this minimal AST.
func RangeOfLoc(loc Loc) Range {
	return Range{Loc: loc}
}
