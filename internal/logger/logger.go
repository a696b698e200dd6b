// Package logger is the diagnostic collector shared by every pass of the
// linker. Passes never return a Go error for a diagnosable condition; they
// append a Msg to a Log and keep going, so that one malformed module can
// surface every problem it has in a single run (see spec §7).
package logger

import (
	"fmt"
	"sort"
	"strings"
)

// Loc is a 0-based byte offset from the start of a source file.
type Loc struct {
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// Source is the already-loaded contents of one input file. It's handed to
// the parser pass and carried along on every Record for use in diagnostics.
type Source struct {
	Index int32

	// Opaque path used to key this source in the registry; never shown to users.
	KeyPath string

	// Path shown in diagnostics, relative to the working directory when possible.
	PrettyPath string

	Contents string
}

func (s *Source) LineAndColumnForLoc(loc Loc) (line int, column int, lineText string) {
	line = 1
	lineStart := 0
	for i := 0; i < int(loc.Start) && i < len(s.Contents); i++ {
		if s.Contents[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(s.Contents)
	if idx := strings.IndexByte(s.Contents[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	column = int(loc.Start) - lineStart
	if column < 0 {
		column = 0
	}
	lineText = s.Contents[lineStart:lineEnd]
	return
}

func (s *Source) TextForRange(r Range) string {
	end := r.Loc.Start + r.Len
	if end > int32(len(s.Contents)) {
		end = int32(len(s.Contents))
	}
	if r.Loc.Start < 0 || r.Loc.Start > end {
		return ""
	}
	return s.Contents[r.Loc.Start:end]
}

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		panic("logger: invalid MsgKind")
	}
}

// MsgID is a stable identifier for one diagnostic in spec §6's taxonomy.
// Unlike esbuild's MsgID (used only to tune log levels), ours doubles as
// the external-contract string via Code().
type MsgID uint8

const (
	MsgID_None MsgID = iota
	MsgID_ES6_ModuleNamespaceObjectAssignment
	MsgID_ES6_ModuleNamespaceObjectNonGetProp
	MsgID_ES6_ImportedBindingAssignment
	MsgID_LHSOfGoogRequireMustBeConst
	MsgID_UselessUseStrictDirective
	MsgID_ES6_DuplicatedImportedBoundNames
	MsgID_ES6_DuplicatedExportNames
	MsgID_ES6_ResolveExportFailure
	MsgID_ES6_ExportedBindingNotDeclared
	MsgID_LoadError
)

// Code returns the exact external-contract string for this diagnostic kind.
func (id MsgID) Code() string {
	switch id {
	case MsgID_ES6_ModuleNamespaceObjectAssignment:
		return "ES6_MODULE_NAMESPACE_OBJECT_ASSIGNEMNT"
	case MsgID_ES6_ModuleNamespaceObjectNonGetProp:
		return "ES6_MODULE_NAMESPACE_OBJECT_NON_GETPROP"
	case MsgID_ES6_ImportedBindingAssignment:
		return "ES6_IMPORTED_BINDING_ASSIGNMENT"
	case MsgID_LHSOfGoogRequireMustBeConst:
		return "LHS_OF_GOOG_REQUIRE_MUST_BE_CONST"
	case MsgID_UselessUseStrictDirective:
		return "USELESS_USE_STRICT_DIRECTIVE"
	case MsgID_ES6_DuplicatedImportedBoundNames:
		return "ES6_DUPLICATED_IMPORTED_BOUND_NAMES"
	case MsgID_ES6_DuplicatedExportNames:
		return "ES6_DUPLICATED_EXPORT_NAMES"
	case MsgID_ES6_ResolveExportFailure:
		return "ES6_RESOLVE_EXPORT_FAILURE"
	case MsgID_ES6_ExportedBindingNotDeclared:
		return "ES6_EXPORTED_BINDING_NOT_DECLARED"
	case MsgID_LoadError:
		return "LOAD_ERROR"
	default:
		return ""
	}
}

type MsgLocation struct {
	File       string
	Line       int // 1-based
	Column     int // 0-based, in bytes
	Length     int
	LineText   string
}

type MsgData struct {
	Text     string
	Location *MsgLocation
}

type Msg struct {
	Kind MsgKind
	ID   MsgID
	Data MsgData
}

func (msg Msg) String() string {
	loc := ""
	if msg.Data.Location != nil {
		loc = fmt.Sprintf("%s:%d:%d: ", msg.Data.Location.File, msg.Data.Location.Line, msg.Data.Location.Column)
	}
	return fmt.Sprintf("%s%s: %s [%s]", loc, msg.Kind, msg.Data.Text, msg.ID.Code())
}

func locationForRange(source *Source, r Range) *MsgLocation {
	if source == nil {
		return nil
	}
	line, column, lineText := source.LineAndColumnForLoc(r.Loc)
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     line,
		Column:   column,
		Length:   int(r.Len),
		LineText: lineText,
	}
}

// Log collects diagnostics for one compile session. It is not safe for
// concurrent use; callers that fan out across goroutines must synchronize
// their own access, per spec §5.
type Log struct {
	msgs []Msg
}

func NewLog() *Log {
	return &Log{}
}

func (log *Log) AddError(source *Source, r Range, id MsgID, text string) {
	log.msgs = append(log.msgs, Msg{
		Kind: Error,
		ID:   id,
		Data: MsgData{Text: text, Location: locationForRange(source, r)},
	})
}

func (log *Log) AddWarning(source *Source, r Range, id MsgID, text string) {
	log.msgs = append(log.msgs, Msg{
		Kind: Warning,
		ID:   id,
		Data: MsgData{Text: text, Location: locationForRange(source, r)},
	})
}

func (log *Log) HasErrors() bool {
	for _, msg := range log.msgs {
		if msg.Kind == Error {
			return true
		}
	}
	return false
}

func (log *Log) Msgs() []Msg {
	return log.msgs
}

// Sorted returns a copy of the collected messages ordered by file, then
// position, then kind - useful for deterministic test output and CLI display.
func (log *Log) Sorted() []Msg {
	sorted := make([]Msg, len(log.msgs))
	copy(sorted, log.msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		aLoc, bLoc := a.Data.Location, b.Data.Location
		if aLoc == nil || bLoc == nil {
			return bLoc != nil
		}
		if aLoc.File != bLoc.File {
			return aLoc.File < bLoc.File
		}
		if aLoc.Line != bLoc.Line {
			return aLoc.Line < bLoc.Line
		}
		if aLoc.Column != bLoc.Column {
			return aLoc.Column < bLoc.Column
		}
		return a.Kind < b.Kind
	})
	return sorted
}

// internalError is the panic payload for invariant breaks (spec §7): these
// are programming faults, never diagnostics, and are only recovered at the
// top of the CLI.
type internalError struct {
	msg string
}

func (e internalError) Error() string { return e.msg }

// Internal panics with an internalError. Use for conditions the spec marks
// as "programming faults" - a resolved module unexpectedly missing, a
// binding without a module, and similar invariant breaks.
func Internal(format string, args ...interface{}) {
	panic(internalError{msg: fmt.Sprintf(format, args...)})
}

// RecoverInternal turns a recovered internalError into a plain error message,
// re-panicking anything else (a real bug in this program, not a caller fault).
func RecoverInternal() (msg string, ok bool) {
	if r := recover(); r != nil {
		if ie, isInternal := r.(internalError); isInternal {
			return ie.msg, true
		}
		panic(r)
	}
	return "", false
}
