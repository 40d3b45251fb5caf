package ast

import (
	"strconv"

	"github.com/orizon-lang/astopt/internal/position"
)

// Constructor helpers for synthesized nodes. Every node they return carries
// a zero span; passes copy the span of the node they replace when it
// matters for reporting.

// Id creates an identifier
func Id(name string) *Ident { return &Ident{Name: name} }

// This creates the implicit receiver expression
func This() *ThisExpr { return &ThisExpr{} }

// Int creates an integer literal
func Int(v int64) *Literal {
	return &Literal{Kind: LitInt, Value: strconv.FormatInt(v, 10)}
}

// Float creates a float literal from its source text
func Float(text string) *Literal { return &Literal{Kind: LitFloat, Value: text} }

// Bool creates a boolean literal
func Bool(v bool) *Literal { return &Literal{Kind: LitBool, Value: strconv.FormatBool(v)} }

// Str creates a string literal holding s
func Str(s string) *Literal { return &Literal{Kind: LitString, Value: s} }

// Null creates the null literal
func Null() *Literal { return &Literal{Kind: LitNull, Value: "null"} }

// Paren wraps x in parentheses
func Paren(x Expr) *ParenExpr { return &ParenExpr{X: x} }

// Not creates a logical negation
func Not(x Expr) *UnaryExpr { return &UnaryExpr{Op: "!", X: x} }

// Inc creates a postfix increment
func Inc(x Expr) *UnaryExpr { return &UnaryExpr{Op: "++", X: x, Postfix: true} }

// Bin creates a binary expression
func Bin(x Expr, op string, y Expr) *BinaryExpr { return &BinaryExpr{Op: op, X: x, Y: y} }

// Assign creates an assignment; op is "=" or a compound operator
func Assign(target Expr, op string, value Expr) *AssignExpr {
	return &AssignExpr{Op: op, Target: target, Value: value}
}

// Sel creates a member chain x.n1.n2...
func Sel(x Expr, names ...string) Expr {
	for _, n := range names {
		x = &MemberExpr{X: x, Name: n}
	}
	return x
}

// Path creates a member chain rooted at an identifier: Path("a", "b") is a.b
func Path(root string, names ...string) Expr { return Sel(Id(root), names...) }

// Call creates an invocation with by-value arguments
func Call(fun Expr, args ...Expr) *CallExpr {
	return &CallExpr{Fun: fun, Args: Args(args...)}
}

// Args wraps expressions as by-value arguments
func Args(values ...Expr) []*Arg {
	out := make([]*Arg, len(values))
	for i, v := range values {
		out[i] = &Arg{Value: v}
	}
	return out
}

// New creates an object construction expression
func New(typ string, args ...Expr) *NewExpr {
	return &NewExpr{Type: Type(typ), Args: Args(args...)}
}

// Index creates element access
func Index(x, i Expr) *IndexExpr { return &IndexExpr{X: x, Index: i} }

// Cond creates a ternary expression
func Cond(c, then, els Expr) *CondExpr { return &CondExpr{Cond: c, Then: then, Else: els} }

// Type creates a type reference; the empty name yields nil (var)
func Type(name string) *TypeName {
	if name == "" {
		return nil
	}
	return &TypeName{Name: name}
}

// Var creates `typ name = init;`; an empty typ declares with var
func Var(typ, name string, init Expr) *LocalDecl {
	return &LocalDecl{Type: Type(typ), Name: name, Init: init}
}

// ExprS wraps an expression as a statement
func ExprS(x Expr) *ExprStmt { return &ExprStmt{X: x} }

// Ret creates a return statement; x may be nil
func Ret(x Expr) *ReturnStmt { return &ReturnStmt{Result: x} }

// Blk creates a block
func Blk(stmts ...Stmt) *Block { return &Block{Stmts: stmts} }

// If creates an if statement; els may be nil
func If(cond Expr, then, els Stmt) *IfStmt { return &IfStmt{Cond: cond, Then: then, Else: els} }

// While creates a while loop
func While(cond Expr, body Stmt) *WhileStmt { return &WhileStmt{Cond: cond, Body: body} }

// For creates a counting loop `for (int v = from; v op to; v++) body`
func For(v string, from int64, op string, to int64, body Stmt) *ForStmt {
	return &ForStmt{
		Init: []Stmt{Var("int", v, Int(from))},
		Cond: Bin(Id(v), op, Int(to)),
		Post: []Expr{Inc(Id(v))},
		Body: body,
	}
}

// ForEach creates a foreach loop over coll with a var-typed variable
func ForEach(name string, coll Expr, body Stmt) *ForEachStmt {
	return &ForEachStmt{Name: name, Collection: coll, Body: body}
}

// ===== Declaration builders =====

// FileBuilder provides a fluent interface for building files.
type FileBuilder struct {
	span   position.Span
	usings []string
	types  []*TypeDecl
}

// NewFileBuilder starts a file with the given span.
func NewFileBuilder(span position.Span) *FileBuilder {
	return &FileBuilder{span: span}
}

// Using adds a using directive.
func (fb *FileBuilder) Using(ns string) *FileBuilder {
	fb.usings = append(fb.usings, ns)
	return fb
}

// Class adds a class declaration with the given members.
func (fb *FileBuilder) Class(name string, members ...Member) *FileBuilder {
	fb.types = append(fb.types, &TypeDecl{
		Span:      fb.span,
		Modifiers: ModPublic,
		Kind:      KindClass,
		Name:      name,
		Members:   members,
	})
	return fb
}

// Build creates the file.
func (fb *FileBuilder) Build() *File {
	return &File{Span: fb.span, Usings: fb.usings, Types: fb.types}
}

// Method creates a block-bodied method.
func Method(mods Modifiers, ret, name string, params []*Param, body ...Stmt) *MethodDecl {
	return &MethodDecl{
		Modifiers:  mods,
		ReturnType: Type(ret),
		Name:       name,
		Params:     params,
		Body:       Blk(body...),
	}
}

// ExprMethod creates an expression-bodied method.
func ExprMethod(mods Modifiers, ret, name string, params []*Param, body Expr) *MethodDecl {
	return &MethodDecl{
		Modifiers:  mods,
		ReturnType: Type(ret),
		Name:       name,
		Params:     params,
		ExprBody:   body,
	}
}

// Params builds by-value parameters from alternating type and name strings.
func Params(typeAndName ...string) []*Param {
	var out []*Param
	for i := 0; i+1 < len(typeAndName); i += 2 {
		out = append(out, &Param{Type: Type(typeAndName[i]), Name: typeAndName[i+1]})
	}
	return out
}
