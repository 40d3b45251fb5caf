package ast

import (
	"strings"

	"github.com/orizon-lang/astopt/internal/position"
)

// ===== Statements =====

// Block represents a braced statement list
type Block struct {
	Span  position.Span
	Stmts []Stmt
}

func (b *Block) GetSpan() position.Span { return b.Span }
func (b *Block) stmtNode()              {}
func (b *Block) String() string {
	if len(b.Stmts) == 0 {
		return "{\n}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString(indent(s.String()))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	Span position.Span
	X    Expr
}

func (s *ExprStmt) GetSpan() position.Span { return s.Span }
func (s *ExprStmt) stmtNode()              {}
func (s *ExprStmt) String() string         { return s.X.String() + ";" }

// LocalDecl represents a local variable declaration. A nil Type means var.
type LocalDecl struct {
	Span position.Span
	Type *TypeName
	Name string
	Init Expr
}

func (d *LocalDecl) GetSpan() position.Span { return d.Span }
func (d *LocalDecl) stmtNode()              {}
func (d *LocalDecl) String() string {
	typ := "var"
	if d.Type != nil {
		typ = d.Type.String()
	}
	s := typ + " " + d.Name
	if d.Init != nil {
		s += " = " + d.Init.String()
	}
	return s + ";"
}

// IfStmt represents an if statement with an optional else branch
type IfStmt struct {
	Span position.Span
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

func (s *IfStmt) GetSpan() position.Span { return s.Span }
func (s *IfStmt) stmtNode()              {}
func (s *IfStmt) String() string {
	out := "if (" + s.Cond.String() + ")" + nested(s.Then)
	if s.Else != nil {
		if _, ok := s.Else.(*IfStmt); ok {
			out += "\nelse " + s.Else.String()
		} else {
			out += "\nelse" + nested(s.Else)
		}
	}
	return out
}

// WhileStmt represents a while loop
type WhileStmt struct {
	Span position.Span
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) GetSpan() position.Span { return s.Span }
func (s *WhileStmt) stmtNode()              {}
func (s *WhileStmt) String() string {
	return "while (" + s.Cond.String() + ")" + nested(s.Body)
}

// ForStmt represents a C-style for loop
type ForStmt struct {
	Span position.Span
	Init []Stmt // LocalDecl or ExprStmt
	Cond Expr   // nil for an infinite loop
	Post []Expr
	Body Stmt
}

func (s *ForStmt) GetSpan() position.Span { return s.Span }
func (s *ForStmt) stmtNode()              {}
func (s *ForStmt) String() string {
	inits := make([]string, len(s.Init))
	for i, st := range s.Init {
		inits[i] = strings.TrimSuffix(st.String(), ";")
	}
	cond := ""
	if s.Cond != nil {
		cond = " " + s.Cond.String()
	}
	posts := make([]string, len(s.Post))
	for i, p := range s.Post {
		posts[i] = p.String()
	}
	post := ""
	if len(posts) > 0 {
		post = " " + strings.Join(posts, ", ")
	}
	return "for (" + strings.Join(inits, ", ") + ";" + cond + ";" + post + ")" + nested(s.Body)
}

// ForEachStmt represents a foreach loop. A nil Type means var.
type ForEachStmt struct {
	Span       position.Span
	Type       *TypeName
	Name       string
	Collection Expr
	Body       Stmt
}

func (s *ForEachStmt) GetSpan() position.Span { return s.Span }
func (s *ForEachStmt) stmtNode()              {}
func (s *ForEachStmt) String() string {
	typ := "var"
	if s.Type != nil {
		typ = s.Type.String()
	}
	return "foreach (" + typ + " " + s.Name + " in " + s.Collection.String() + ")" + nested(s.Body)
}

// SwitchSection is one group of case labels with its statements
type SwitchSection struct {
	Span    position.Span
	Labels  []Expr
	Default bool
	Body    []Stmt
}

func (s *SwitchSection) GetSpan() position.Span { return s.Span }
func (s *SwitchSection) String() string {
	var sb strings.Builder
	for _, l := range s.Labels {
		sb.WriteString("case " + l.String() + ":\n")
	}
	if s.Default {
		sb.WriteString("default:\n")
	}
	for _, st := range s.Body {
		sb.WriteString(indent(st.String()))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SwitchStmt represents a switch statement
type SwitchStmt struct {
	Span     position.Span
	Tag      Expr
	Sections []*SwitchSection
}

func (s *SwitchStmt) GetSpan() position.Span { return s.Span }
func (s *SwitchStmt) stmtNode()              {}
func (s *SwitchStmt) String() string {
	var sb strings.Builder
	sb.WriteString("switch (" + s.Tag.String() + ")\n{\n")
	for _, sec := range s.Sections {
		sb.WriteString(indent(sec.String()))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Span   position.Span
	Result Expr // nil for a bare return
}

func (s *ReturnStmt) GetSpan() position.Span { return s.Span }
func (s *ReturnStmt) stmtNode()              {}
func (s *ReturnStmt) String() string {
	if s.Result == nil {
		return "return;"
	}
	return "return " + s.Result.String() + ";"
}

// ThrowStmt represents a throw statement
type ThrowStmt struct {
	Span position.Span
	X    Expr // nil for a rethrow
}

func (s *ThrowStmt) GetSpan() position.Span { return s.Span }
func (s *ThrowStmt) stmtNode()              {}
func (s *ThrowStmt) String() string {
	if s.X == nil {
		return "throw;"
	}
	return "throw " + s.X.String() + ";"
}

// BreakStmt represents a break statement
type BreakStmt struct {
	Span position.Span
}

func (s *BreakStmt) GetSpan() position.Span { return s.Span }
func (s *BreakStmt) stmtNode()              {}
func (s *BreakStmt) String() string         { return "break;" }

// ContinueStmt represents a continue statement
type ContinueStmt struct {
	Span position.Span
}

func (s *ContinueStmt) GetSpan() position.Span { return s.Span }
func (s *ContinueStmt) stmtNode()              {}
func (s *ContinueStmt) String() string         { return "continue;" }

// GotoStmt represents a goto statement
type GotoStmt struct {
	Span  position.Span
	Label string
}

func (s *GotoStmt) GetSpan() position.Span { return s.Span }
func (s *GotoStmt) stmtNode()              {}
func (s *GotoStmt) String() string         { return "goto " + s.Label + ";" }

// LabeledStmt represents a statement carrying a goto label
type LabeledStmt struct {
	Span  position.Span
	Label string
	Stmt  Stmt
}

func (s *LabeledStmt) GetSpan() position.Span { return s.Span }
func (s *LabeledStmt) stmtNode()              {}
func (s *LabeledStmt) String() string         { return s.Label + ":\n" + s.Stmt.String() }

// EmptyStmt represents a lone semicolon
type EmptyStmt struct {
	Span position.Span
}

func (s *EmptyStmt) GetSpan() position.Span { return s.Span }
func (s *EmptyStmt) stmtNode()              {}
func (s *EmptyStmt) String() string         { return ";" }

// nested renders a statement in a single-statement position.
func nested(s Stmt) string {
	if b, ok := s.(*Block); ok {
		return "\n" + b.String()
	}
	return "\n" + indent(s.String())
}
