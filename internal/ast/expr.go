package ast

import (
	"strconv"
	"strings"

	"github.com/orizon-lang/astopt/internal/position"
)

// ===== Expressions =====

// Ident represents a simple name
type Ident struct {
	Span position.Span
	Name string
}

func (e *Ident) GetSpan() position.Span { return e.Span }
func (e *Ident) exprNode()              {}
func (e *Ident) String() string         { return e.Name }

// LiteralKind classifies literal values
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitChar
	LitNull
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitBool:
		return "bool"
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitNull:
		return "null"
	default:
		return "unknown"
	}
}

// ParseLiteralKind is the inverse of LiteralKind.String.
func ParseLiteralKind(s string) (LiteralKind, bool) {
	for k := LitInt; k <= LitNull; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Literal represents a literal value. Numeric values keep their source text,
// including suffixes; string and char values hold the decoded content.
type Literal struct {
	Span  position.Span
	Kind  LiteralKind
	Value string
}

func (e *Literal) GetSpan() position.Span { return e.Span }
func (e *Literal) exprNode()              {}
func (e *Literal) String() string {
	switch e.Kind {
	case LitString:
		return strconv.Quote(e.Value)
	case LitChar:
		r := []rune(e.Value)
		if len(r) != 1 {
			return "'" + e.Value + "'"
		}
		return strconv.QuoteRune(r[0])
	case LitNull:
		return "null"
	default:
		return e.Value
	}
}

// ThisExpr represents the implicit receiver
type ThisExpr struct {
	Span position.Span
}

func (e *ThisExpr) GetSpan() position.Span { return e.Span }
func (e *ThisExpr) exprNode()              {}
func (e *ThisExpr) String() string         { return "this" }

// ParenExpr represents an explicitly parenthesized expression
type ParenExpr struct {
	Span position.Span
	X    Expr
}

func (e *ParenExpr) GetSpan() position.Span { return e.Span }
func (e *ParenExpr) exprNode()              {}
func (e *ParenExpr) String() string         { return "(" + e.X.String() + ")" }

// UnaryExpr represents a prefix or postfix unary operation
type UnaryExpr struct {
	Span    position.Span
	Op      string // !, -, +, ~, ++, --
	X       Expr
	Postfix bool
}

func (e *UnaryExpr) GetSpan() position.Span { return e.Span }
func (e *UnaryExpr) exprNode()              {}
func (e *UnaryExpr) String() string {
	if e.Postfix {
		return operand(e.X, precPrimary) + e.Op
	}
	x := operand(e.X, precUnary)
	// Keep "- -x" and "+ +x" from fusing into a decrement or increment.
	if (e.Op == "-" || e.Op == "+") && strings.HasPrefix(x, e.Op) {
		return e.Op + " " + x
	}
	return e.Op + x
}

// IsIncDec reports whether the operation is ++ or --
func (e *UnaryExpr) IsIncDec() bool { return e.Op == "++" || e.Op == "--" }

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	Span position.Span
	Op   string
	X    Expr
	Y    Expr
}

func (e *BinaryExpr) GetSpan() position.Span { return e.Span }
func (e *BinaryExpr) exprNode()              {}
func (e *BinaryExpr) String() string {
	p := binaryPrec(e.Op)
	if e.Op == "??" {
		return operand(e.X, p+1) + " ?? " + operand(e.Y, p)
	}
	return operand(e.X, p) + " " + e.Op + " " + operand(e.Y, p+1)
}

// AssignExpr represents simple and compound assignment
type AssignExpr struct {
	Span   position.Span
	Op     string // =, +=, -=, *=, /=, ...
	Target Expr
	Value  Expr
}

func (e *AssignExpr) GetSpan() position.Span { return e.Span }
func (e *AssignExpr) exprNode()              {}
func (e *AssignExpr) String() string {
	return operand(e.Target, precUnary) + " " + e.Op + " " + operand(e.Value, precAssign)
}

// Arg is one call or constructor argument
type Arg struct {
	Span  position.Span
	Mode  ParamMode
	Value Expr
}

func (a *Arg) GetSpan() position.Span { return a.Span }
func (a *Arg) String() string {
	if a.Mode != ModeValue {
		return a.Mode.String() + " " + a.Value.String()
	}
	return a.Value.String()
}

// CallExpr represents a method invocation
type CallExpr struct {
	Span position.Span
	Fun  Expr
	Args []*Arg
}

func (e *CallExpr) GetSpan() position.Span { return e.Span }
func (e *CallExpr) exprNode()              {}
func (e *CallExpr) String() string {
	return operand(e.Fun, precPrimary) + "(" + joinArgs(e.Args) + ")"
}

// MemberExpr represents member access X.Name
type MemberExpr struct {
	Span position.Span
	X    Expr
	Name string
}

func (e *MemberExpr) GetSpan() position.Span { return e.Span }
func (e *MemberExpr) exprNode()              {}
func (e *MemberExpr) String() string         { return operand(e.X, precPrimary) + "." + e.Name }

// IndexExpr represents element access X[Index]
type IndexExpr struct {
	Span  position.Span
	X     Expr
	Index Expr
}

func (e *IndexExpr) GetSpan() position.Span { return e.Span }
func (e *IndexExpr) exprNode()              {}
func (e *IndexExpr) String() string {
	return operand(e.X, precPrimary) + "[" + e.Index.String() + "]"
}

// CondExpr represents the ternary conditional operator
type CondExpr struct {
	Span position.Span
	Cond Expr
	Then Expr
	Else Expr
}

func (e *CondExpr) GetSpan() position.Span { return e.Span }
func (e *CondExpr) exprNode()              {}
func (e *CondExpr) String() string {
	return operand(e.Cond, precCond+1) + " ? " + operand(e.Then, precCond) + " : " + operand(e.Else, precCond)
}

// NewExpr represents object construction
type NewExpr struct {
	Span position.Span
	Type *TypeName
	Args []*Arg
}

func (e *NewExpr) GetSpan() position.Span { return e.Span }
func (e *NewExpr) exprNode()              {}
func (e *NewExpr) String() string {
	return "new " + e.Type.String() + "(" + joinArgs(e.Args) + ")"
}

// CastExpr represents an explicit conversion (T)X
type CastExpr struct {
	Span position.Span
	Type *TypeName
	X    Expr
}

func (e *CastExpr) GetSpan() position.Span { return e.Span }
func (e *CastExpr) exprNode()              {}
func (e *CastExpr) String() string {
	return "(" + e.Type.String() + ")" + operand(e.X, precUnary)
}

// InterpolatedString represents $"..." text. String literal parts are raw
// text fragments; every other part is an interpolation hole.
type InterpolatedString struct {
	Span  position.Span
	Parts []Expr
}

func (e *InterpolatedString) GetSpan() position.Span { return e.Span }
func (e *InterpolatedString) exprNode()              {}
func (e *InterpolatedString) String() string {
	var sb strings.Builder
	sb.WriteString(`$"`)
	for _, p := range e.Parts {
		if lit, ok := p.(*Literal); ok && lit.Kind == LitString {
			q := strconv.Quote(lit.Value)
			q = strings.NewReplacer("{", "{{", "}", "}}").Replace(q[1 : len(q)-1])
			sb.WriteString(q)
			continue
		}
		sb.WriteString("{" + p.String() + "}")
	}
	sb.WriteString(`"`)
	return sb.String()
}

// TypeName represents a reference to a type, including generic arguments
// written inline (List<int>).
type TypeName struct {
	Span position.Span
	Name string
}

func (e *TypeName) GetSpan() position.Span { return e.Span }
func (e *TypeName) exprNode()              {}
func (e *TypeName) String() string {
	if e == nil {
		return "var"
	}
	return e.Name
}

// ===== Precedence =====

const (
	precAssign = iota + 1
	precCond
	precCoalesce
	precOrOr
	precAndAnd
	precOr
	precXor
	precAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

func binaryPrec(op string) int {
	switch op {
	case "??":
		return precCoalesce
	case "||":
		return precOrOr
	case "&&":
		return precAndAnd
	case "|":
		return precOr
	case "^":
		return precXor
	case "&":
		return precAnd
	case "==", "!=":
		return precEquality
	case "<", ">", "<=", ">=", "is", "as":
		return precRelational
	case "<<", ">>":
		return precShift
	case "+", "-":
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	default:
		return precEquality
	}
}

// Precedence returns the binding strength of an expression when rendered.
func Precedence(e Expr) int {
	switch x := e.(type) {
	case *AssignExpr:
		return precAssign
	case *CondExpr:
		return precCond
	case *BinaryExpr:
		return binaryPrec(x.Op)
	case *UnaryExpr:
		if x.Postfix {
			return precPrimary
		}
		return precUnary
	case *CastExpr:
		return precUnary
	case *Literal:
		if (x.Kind == LitInt || x.Kind == LitFloat) && strings.HasPrefix(x.Value, "-") {
			return precUnary
		}
		return precPrimary
	default:
		return precPrimary
	}
}

func operand(e Expr, min int) string {
	if Precedence(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func joinArgs(args []*Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
