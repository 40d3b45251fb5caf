package astjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orizon-lang/astopt/internal/ast"
)

// Marshal encodes a unit as indented JSON.
func Marshal(u ast.Unit) ([]byte, error) {
	w, err := unitToWire(u)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(w, "", "  ")
}

func unitToWire(u ast.Unit) (*wireUnit, error) {
	if u.File == nil {
		return nil, fmt.Errorf("unit %s has no file", u.Path)
	}
	f := &wireFile{Span: spanToWire(u.File.Span), Usings: u.File.Usings}
	for _, t := range u.File.Types {
		f.Types = append(f.Types, typeToWire(t))
	}
	return &wireUnit{Path: u.Path, File: f}, nil
}

func modifiersToWire(m ast.Modifiers) []string {
	if m == 0 {
		return nil
	}
	return strings.Fields(m.String())
}

func typeNameToWire(t *ast.TypeName) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func typeToWire(t *ast.TypeDecl) *wireNode {
	w := &wireNode{
		Kind:      KindTypeDecl,
		Span:      spanToWire(t.Span),
		Name:      t.Name,
		Modifiers: modifiersToWire(t.Modifiers),
		TypeKind:  t.Kind.String(),
		Bases:     t.Bases,
	}
	for _, m := range t.Members {
		w.Members = append(w.Members, memberToWire(m))
	}
	return w
}

func memberToWire(m ast.Member) *wireNode {
	switch n := m.(type) {
	case *ast.FieldDecl:
		return &wireNode{Kind: KindField, Span: spanToWire(n.Span), Modifiers: modifiersToWire(n.Modifiers),
			Type: typeNameToWire(n.Type), Name: n.Name, Init: exprToWire(n.Init)}
	case *ast.MethodDecl:
		w := &wireNode{Kind: KindMethod, Span: spanToWire(n.Span), Modifiers: modifiersToWire(n.Modifiers),
			Type: typeNameToWire(n.ReturnType), Name: n.Name, ExprBody: exprToWire(n.ExprBody)}
		if n.Body != nil {
			w.Body = stmtToWire(n.Body)
		}
		for _, p := range n.Params {
			w.Params = append(w.Params, &wireNode{Kind: KindParam, Span: spanToWire(p.Span),
				Mode: p.Mode.String(), Type: typeNameToWire(p.Type), Name: p.Name})
		}
		return w
	case *ast.PropertyDecl:
		return &wireNode{Kind: KindProperty, Span: spanToWire(n.Span), Modifiers: modifiersToWire(n.Modifiers),
			Type: typeNameToWire(n.Type), Name: n.Name, Getter: accessorToWire(n.Getter), Setter: accessorToWire(n.Setter)}
	default:
		panic(fmt.Sprintf("astjson: unexpected member %T", m))
	}
}

func accessorToWire(a *ast.Accessor) *wireNode {
	if a == nil {
		return nil
	}
	w := &wireNode{Kind: KindAccessor, Span: spanToWire(a.Span), Name: a.Kind.String(), ExprBody: exprToWire(a.ExprBody)}
	if a.Body != nil {
		w.Body = stmtToWire(a.Body)
	}
	return w
}

func stmtsToWire(list []ast.Stmt) []*wireNode {
	out := make([]*wireNode, len(list))
	for i, s := range list {
		out[i] = stmtToWire(s)
	}
	return out
}

func stmtToWire(s ast.Stmt) *wireNode {
	if s == nil {
		return nil
	}
	span := spanToWire(s.GetSpan())
	switch n := s.(type) {
	case *ast.Block:
		return &wireNode{Kind: KindBlock, Span: span, Stmts: stmtsToWire(n.Stmts)}
	case *ast.ExprStmt:
		return &wireNode{Kind: KindExprStmt, Span: span, X: exprToWire(n.X)}
	case *ast.LocalDecl:
		return &wireNode{Kind: KindLocal, Span: span, Type: typeNameToWire(n.Type), Name: n.Name, Init: exprToWire(n.Init)}
	case *ast.IfStmt:
		return &wireNode{Kind: KindIf, Span: span, Cond: exprToWire(n.Cond), Then: stmtToWire(n.Then), Else: stmtToWire(n.Else)}
	case *ast.WhileStmt:
		return &wireNode{Kind: KindWhile, Span: span, Cond: exprToWire(n.Cond), Body: stmtToWire(n.Body)}
	case *ast.ForStmt:
		w := &wireNode{Kind: KindFor, Span: span, Inits: stmtsToWire(n.Init), Cond: exprToWire(n.Cond), Body: stmtToWire(n.Body)}
		w.Post = exprsToWire(n.Post)
		return w
	case *ast.ForEachStmt:
		return &wireNode{Kind: KindForEach, Span: span, Type: typeNameToWire(n.Type), Name: n.Name,
			Collection: exprToWire(n.Collection), Body: stmtToWire(n.Body)}
	case *ast.SwitchStmt:
		w := &wireNode{Kind: KindSwitch, Span: span, Tag: exprToWire(n.Tag)}
		for _, sec := range n.Sections {
			w.Sections = append(w.Sections, &wireNode{Kind: KindSection, Span: spanToWire(sec.Span),
				Labels: exprsToWire(sec.Labels), Default: sec.Default, Stmts: stmtsToWire(sec.Body)})
		}
		return w
	case *ast.ReturnStmt:
		return &wireNode{Kind: KindReturn, Span: span, Result: exprToWire(n.Result)}
	case *ast.ThrowStmt:
		return &wireNode{Kind: KindThrow, Span: span, X: exprToWire(n.X)}
	case *ast.BreakStmt:
		return &wireNode{Kind: KindBreak, Span: span}
	case *ast.ContinueStmt:
		return &wireNode{Kind: KindContinue, Span: span}
	case *ast.GotoStmt:
		return &wireNode{Kind: KindGoto, Span: span, Label: n.Label}
	case *ast.LabeledStmt:
		return &wireNode{Kind: KindLabeled, Span: span, Label: n.Label, Stmt: stmtToWire(n.Stmt)}
	case *ast.EmptyStmt:
		return &wireNode{Kind: KindEmpty, Span: span}
	default:
		panic(fmt.Sprintf("astjson: unexpected statement %T", s))
	}
}

func exprsToWire(list []ast.Expr) []*wireNode {
	if len(list) == 0 {
		return nil
	}
	out := make([]*wireNode, len(list))
	for i, e := range list {
		out[i] = exprToWire(e)
	}
	return out
}

func argsToWire(args []*ast.Arg) []*wireNode {
	if len(args) == 0 {
		return nil
	}
	out := make([]*wireNode, len(args))
	for i, a := range args {
		w := exprToWire(a.Value)
		w.Mode = a.Mode.String()
		out[i] = w
	}
	return out
}

func exprToWire(e ast.Expr) *wireNode {
	if e == nil {
		return nil
	}
	span := spanToWire(e.GetSpan())
	switch n := e.(type) {
	case *ast.Ident:
		return &wireNode{Kind: KindIdent, Span: span, Name: n.Name}
	case *ast.Literal:
		return &wireNode{Kind: KindLiteral, Span: span, Literal: n.Kind.String(), Value: n.Value}
	case *ast.ThisExpr:
		return &wireNode{Kind: KindThis, Span: span}
	case *ast.ParenExpr:
		return &wireNode{Kind: KindParen, Span: span, X: exprToWire(n.X)}
	case *ast.UnaryExpr:
		return &wireNode{Kind: KindUnary, Span: span, Op: n.Op, Postfix: n.Postfix, X: exprToWire(n.X)}
	case *ast.BinaryExpr:
		return &wireNode{Kind: KindBinary, Span: span, Op: n.Op, X: exprToWire(n.X), Y: exprToWire(n.Y)}
	case *ast.AssignExpr:
		return &wireNode{Kind: KindAssign, Span: span, Op: n.Op, Target: exprToWire(n.Target), RHS: exprToWire(n.Value)}
	case *ast.CallExpr:
		return &wireNode{Kind: KindCall, Span: span, Fun: exprToWire(n.Fun), Args: argsToWire(n.Args)}
	case *ast.MemberExpr:
		return &wireNode{Kind: KindMember, Span: span, X: exprToWire(n.X), Name: n.Name}
	case *ast.IndexExpr:
		return &wireNode{Kind: KindIndex, Span: span, X: exprToWire(n.X), Index: exprToWire(n.Index)}
	case *ast.CondExpr:
		return &wireNode{Kind: KindCond, Span: span, Cond: exprToWire(n.Cond), Then: exprToWire(n.Then), Else: exprToWire(n.Else)}
	case *ast.NewExpr:
		return &wireNode{Kind: KindNew, Span: span, Type: typeNameToWire(n.Type), Args: argsToWire(n.Args)}
	case *ast.CastExpr:
		return &wireNode{Kind: KindCast, Span: span, Type: typeNameToWire(n.Type), X: exprToWire(n.X)}
	case *ast.InterpolatedString:
		return &wireNode{Kind: KindInterp, Span: span, Parts: exprsToWire(n.Parts)}
	case *ast.TypeName:
		return &wireNode{Kind: KindTypeName, Span: span, Name: n.Name}
	default:
		panic(fmt.Sprintf("astjson: unexpected expression %T", e))
	}
}
