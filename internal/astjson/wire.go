// Package astjson converts parsed units to and from a JSON interchange
// form so a host can hand pre-parsed trees to the optimizer and read the
// rewritten trees back.
//
// Every statement, expression and member is an object tagged by "kind".
// Spans are optional; a missing span decodes to the zero span.
package astjson

import (
	"github.com/orizon-lang/astopt/internal/position"
)

// Ext is the file extension of encoded units.
const Ext = ".ast.json"

// Node kinds.
const (
	KindBlock    = "Block"
	KindExprStmt = "ExprStmt"
	KindLocal    = "LocalDecl"
	KindIf       = "If"
	KindWhile    = "While"
	KindFor      = "For"
	KindForEach  = "ForEach"
	KindSwitch   = "Switch"
	KindReturn   = "Return"
	KindThrow    = "Throw"
	KindBreak    = "Break"
	KindContinue = "Continue"
	KindGoto     = "Goto"
	KindLabeled  = "Labeled"
	KindEmpty    = "Empty"
	KindIdent    = "Ident"
	KindLiteral  = "Literal"
	KindThis     = "This"
	KindParen    = "Paren"
	KindUnary    = "Unary"
	KindBinary   = "Binary"
	KindAssign   = "Assign"
	KindCall     = "Call"
	KindMember   = "Member"
	KindIndex    = "Index"
	KindCond     = "Cond"
	KindNew      = "New"
	KindCast     = "Cast"
	KindInterp   = "Interpolated"
	KindTypeName = "TypeName"
	KindField    = "Field"
	KindMethod   = "Method"
	KindProperty = "Property"
	KindParam    = "Param"
	KindAccessor = "Accessor"
	KindSection  = "Section"
	KindTypeDecl = "Type"
)

type wireUnit struct {
	Path string    `json:"path"`
	File *wireFile `json:"file"`
}

type wireFile struct {
	Span   *wireSpan   `json:"span,omitempty"`
	Usings []string    `json:"usings,omitempty"`
	Types  []*wireNode `json:"types"`
}

type wireSpan struct {
	File        string `json:"file,omitempty"`
	StartLine   int    `json:"start_line"`
	StartCol    int    `json:"start_col"`
	StartOffset int    `json:"start_offset"`
	EndLine     int    `json:"end_line"`
	EndCol      int    `json:"end_col"`
	EndOffset   int    `json:"end_offset"`
}

// wireNode is the union of every node shape. Only the fields the kind uses
// are set.
type wireNode struct {
	Kind string    `json:"kind"`
	Span *wireSpan `json:"span,omitempty"`

	Name      string   `json:"name,omitempty"`
	Type      string   `json:"type,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	Op        string   `json:"op,omitempty"`
	Postfix   bool     `json:"postfix,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Label     string   `json:"label,omitempty"`
	Default   bool     `json:"default,omitempty"`

	// Literals
	Literal string `json:"literal,omitempty"`
	Value   string `json:"value,omitempty"`

	// Type declarations
	TypeKind string      `json:"type_kind,omitempty"`
	Bases    []string    `json:"bases,omitempty"`
	Members  []*wireNode `json:"members,omitempty"`

	// Children
	X          *wireNode   `json:"x,omitempty"`
	Y          *wireNode   `json:"y,omitempty"`
	Target     *wireNode   `json:"target,omitempty"`
	RHS        *wireNode   `json:"rhs,omitempty"`
	Fun        *wireNode   `json:"fun,omitempty"`
	Index      *wireNode   `json:"index,omitempty"`
	Cond       *wireNode   `json:"cond,omitempty"`
	Then       *wireNode   `json:"then,omitempty"`
	Else       *wireNode   `json:"else,omitempty"`
	Init       *wireNode   `json:"init,omitempty"`
	Body       *wireNode   `json:"body,omitempty"`
	ExprBody   *wireNode   `json:"expr_body,omitempty"`
	Collection *wireNode   `json:"collection,omitempty"`
	Tag        *wireNode   `json:"tag,omitempty"`
	Result     *wireNode   `json:"result,omitempty"`
	Stmt       *wireNode   `json:"stmt,omitempty"`
	Getter     *wireNode   `json:"getter,omitempty"`
	Setter     *wireNode   `json:"setter,omitempty"`
	Stmts      []*wireNode `json:"stmts,omitempty"`
	Inits      []*wireNode `json:"inits,omitempty"`
	Post       []*wireNode `json:"post,omitempty"`
	Args       []*wireNode `json:"args,omitempty"`
	Params     []*wireNode `json:"params,omitempty"`
	Sections   []*wireNode `json:"sections,omitempty"`
	Labels     []*wireNode `json:"labels,omitempty"`
	Parts      []*wireNode `json:"parts,omitempty"`
}

func spanToWire(s position.Span) *wireSpan {
	if s == (position.Span{}) {
		return nil
	}
	return &wireSpan{
		File:        s.Start.Filename,
		StartLine:   s.Start.Line,
		StartCol:    s.Start.Column,
		StartOffset: s.Start.Offset,
		EndLine:     s.End.Line,
		EndCol:      s.End.Column,
		EndOffset:   s.End.Offset,
	}
}

func spanFromWire(w *wireSpan) position.Span {
	if w == nil {
		return position.Span{}
	}
	return position.Span{
		Start: position.Position{Filename: w.File, Line: w.StartLine, Column: w.StartCol, Offset: w.StartOffset},
		End:   position.Position{Filename: w.File, Line: w.EndLine, Column: w.EndCol, Offset: w.EndOffset},
	}
}
