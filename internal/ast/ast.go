// Package ast defines the tree model handed over by the host parser: a
// closed set of declaration, statement and expression nodes for a C#-like
// component scripting language.
//
// Trees are immutable once they reach the optimizer. Every rewrite helper in
// this package builds new nodes and shares the subtrees it did not touch, so a
// pass that fails halfway never leaves a corrupted tree behind.
package ast

import (
	"strings"

	"github.com/orizon-lang/astopt/internal/position"
)

// Node is the base interface for all tree nodes
type Node interface {
	// GetSpan returns the source span covered by this node
	GetSpan() position.Span
	// String renders the node as source text
	String() string
}

// Stmt represents all statement nodes
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// Expr represents all expression nodes
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Member represents all type member declarations
type Member interface {
	Node
	memberNode() // Marker method to distinguish members
}

// Unit is one parsed source file. Its identity is the file path.
type Unit struct {
	Path string
	File *File
}

// ===== Program Structure =====

// File represents the root of a parsed source file
type File struct {
	Span   position.Span
	Usings []string    // using directives, in source order
	Types  []*TypeDecl // top-level type declarations
}

func (f *File) GetSpan() position.Span { return f.Span }
func (f *File) String() string {
	var sb strings.Builder
	for _, u := range f.Usings {
		sb.WriteString("using " + u + ";\n")
	}
	for i, t := range f.Types {
		if i > 0 || len(f.Usings) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// ===== Modifiers =====

// Modifiers is the set of declaration modifiers on a type or member
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModStatic
	ModVirtual
	ModAbstract
	ModOverride
	ModSealed
	ModReadonly
	ModConst
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModPrivate, "private"},
	{ModProtected, "protected"},
	{ModInternal, "internal"},
	{ModStatic, "static"},
	{ModVirtual, "virtual"},
	{ModAbstract, "abstract"},
	{ModOverride, "override"},
	{ModSealed, "sealed"},
	{ModReadonly, "readonly"},
	{ModConst, "const"},
}

// Has reports whether every modifier in m2 is set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Any reports whether at least one modifier in m2 is set.
func (m Modifiers) Any(m2 Modifiers) bool { return m&m2 != 0 }

func (m Modifiers) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier maps a keyword to its modifier bit.
func ParseModifier(name string) (Modifiers, bool) {
	for _, mn := range modifierNames {
		if mn.name == name {
			return mn.mod, true
		}
	}
	return 0, false
}

// ===== Declarations =====

// TypeKind distinguishes classes from structs
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
)

func (k TypeKind) String() string {
	if k == KindStruct {
		return "struct"
	}
	return "class"
}

// TypeDecl represents a class or struct declaration
type TypeDecl struct {
	Span      position.Span
	Modifiers Modifiers
	Kind      TypeKind
	Name      string
	Bases     []string
	Members   []Member
}

func (t *TypeDecl) GetSpan() position.Span { return t.Span }
func (t *TypeDecl) String() string {
	var sb strings.Builder
	sb.WriteString(withModifiers(t.Modifiers, t.Kind.String()+" "+t.Name))
	if len(t.Bases) > 0 {
		sb.WriteString(" : " + strings.Join(t.Bases, ", "))
	}
	sb.WriteString("\n{\n")
	for i, m := range t.Members {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent(m.String()))
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// FieldDecl represents a field declaration
type FieldDecl struct {
	Span      position.Span
	Modifiers Modifiers
	Type      *TypeName
	Name      string
	Init      Expr // nil when absent
}

func (f *FieldDecl) GetSpan() position.Span { return f.Span }
func (f *FieldDecl) memberNode()            {}
func (f *FieldDecl) String() string {
	s := withModifiers(f.Modifiers, f.Type.String()+" "+f.Name)
	if f.Init != nil {
		s += " = " + f.Init.String()
	}
	return s + ";"
}

// ParamMode is the passing mode of a parameter or argument
type ParamMode int

const (
	ModeValue ParamMode = iota
	ModeRef
	ModeOut
	ModeIn
)

func (m ParamMode) String() string {
	switch m {
	case ModeRef:
		return "ref"
	case ModeOut:
		return "out"
	case ModeIn:
		return "in"
	default:
		return ""
	}
}

// Param represents a method parameter
type Param struct {
	Span position.Span
	Mode ParamMode
	Type *TypeName
	Name string
}

func (p *Param) GetSpan() position.Span { return p.Span }
func (p *Param) String() string {
	s := p.Type.String() + " " + p.Name
	if p.Mode != ModeValue {
		s = p.Mode.String() + " " + s
	}
	return s
}

// MethodDecl represents a method. Exactly one of Body and ExprBody is set
// unless the method is abstract.
type MethodDecl struct {
	Span       position.Span
	Modifiers  Modifiers
	ReturnType *TypeName
	Name       string
	Params     []*Param
	Body       *Block
	ExprBody   Expr
}

func (m *MethodDecl) GetSpan() position.Span { return m.Span }
func (m *MethodDecl) memberNode()            {}
func (m *MethodDecl) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	head := withModifiers(m.Modifiers, m.ReturnType.String()+" "+m.Name+"("+strings.Join(params, ", ")+")")
	return head + renderBody(m.Body, m.ExprBody)
}

// AccessorKind distinguishes property getters from setters
type AccessorKind int

const (
	AccessorGet AccessorKind = iota
	AccessorSet
)

func (k AccessorKind) String() string {
	if k == AccessorSet {
		return "set"
	}
	return "get"
}

// Accessor is a property get or set accessor
type Accessor struct {
	Span     position.Span
	Kind     AccessorKind
	Body     *Block
	ExprBody Expr
}

func (a *Accessor) GetSpan() position.Span { return a.Span }
func (a *Accessor) String() string {
	if a.Body == nil && a.ExprBody == nil {
		return a.Kind.String() + ";"
	}
	return a.Kind.String() + renderBody(a.Body, a.ExprBody)
}

// PropertyDecl represents a property with optional accessors
type PropertyDecl struct {
	Span      position.Span
	Modifiers Modifiers
	Type      *TypeName
	Name      string
	Getter    *Accessor
	Setter    *Accessor
}

func (p *PropertyDecl) GetSpan() position.Span { return p.Span }
func (p *PropertyDecl) memberNode()            {}
func (p *PropertyDecl) String() string {
	var parts []string
	if p.Getter != nil {
		parts = append(parts, p.Getter.String())
	}
	if p.Setter != nil {
		parts = append(parts, p.Setter.String())
	}
	return withModifiers(p.Modifiers, p.Type.String()+" "+p.Name) + " { " + strings.Join(parts, " ") + " }"
}

func withModifiers(m Modifiers, s string) string {
	if m == 0 {
		return s
	}
	return m.String() + " " + s
}

func renderBody(body *Block, expr Expr) string {
	switch {
	case expr != nil:
		return " => " + expr.String() + ";"
	case body != nil:
		return "\n" + body.String()
	default:
		return ";"
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join(lines, "\n")
}
