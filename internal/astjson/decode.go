package astjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/errors"
)

// Unmarshal decodes one unit. source names the input in errors; all
// errors are INPUT-category StandardErrors.
func Unmarshal(source string, data []byte) (ast.Unit, error) {
	var w wireUnit
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return ast.Unit{}, errors.InvalidInput(source, "malformed JSON", err)
	}
	d := &decoder{source: source}
	return d.unit(&w)
}

type decoder struct {
	source string
}

func (d *decoder) fail(format string, args ...interface{}) error {
	return errors.InvalidInput(d.source, fmt.Sprintf(format, args...), nil)
}

func (d *decoder) unit(w *wireUnit) (ast.Unit, error) {
	if w.Path == "" {
		return ast.Unit{}, d.fail("unit has no path")
	}
	if w.File == nil {
		return ast.Unit{}, d.fail("unit %s has no file", w.Path)
	}
	f := &ast.File{Span: spanFromWire(w.File.Span), Usings: w.File.Usings}
	for _, t := range w.File.Types {
		td, err := d.typeDecl(t)
		if err != nil {
			return ast.Unit{}, err
		}
		f.Types = append(f.Types, td)
	}
	return ast.Unit{Path: w.Path, File: f}, nil
}

func (d *decoder) modifiers(names []string) (ast.Modifiers, error) {
	var m ast.Modifiers
	for _, name := range names {
		bit, ok := ast.ParseModifier(name)
		if !ok {
			return 0, d.fail("unknown modifier %q", name)
		}
		m |= bit
	}
	return m, nil
}

func (d *decoder) mode(s string) (ast.ParamMode, error) {
	switch s {
	case "":
		return ast.ModeValue, nil
	case "ref":
		return ast.ModeRef, nil
	case "out":
		return ast.ModeOut, nil
	case "in":
		return ast.ModeIn, nil
	default:
		return 0, d.fail("unknown parameter mode %q", s)
	}
}

func typeName(name string) *ast.TypeName {
	if name == "" {
		return nil
	}
	return &ast.TypeName{Name: name}
}

func (d *decoder) typeDecl(w *wireNode) (*ast.TypeDecl, error) {
	if w == nil || w.Kind != KindTypeDecl {
		return nil, d.fail("expected a %s node", KindTypeDecl)
	}
	mods, err := d.modifiers(w.Modifiers)
	if err != nil {
		return nil, err
	}
	t := &ast.TypeDecl{Span: spanFromWire(w.Span), Modifiers: mods, Name: w.Name, Bases: w.Bases}
	switch w.TypeKind {
	case "", "class":
		t.Kind = ast.KindClass
	case "struct":
		t.Kind = ast.KindStruct
	default:
		return nil, d.fail("type %s: unknown type kind %q", w.Name, w.TypeKind)
	}
	for _, m := range w.Members {
		member, err := d.member(m)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", w.Name, err)
		}
		t.Members = append(t.Members, member)
	}
	return t, nil
}

func (d *decoder) member(w *wireNode) (ast.Member, error) {
	if w == nil {
		return nil, d.fail("null member")
	}
	mods, err := d.modifiers(w.Modifiers)
	if err != nil {
		return nil, err
	}
	span := spanFromWire(w.Span)
	switch w.Kind {
	case KindField:
		init, err := d.optExpr(w.Init)
		if err != nil {
			return nil, err
		}
		return &ast.FieldDecl{Span: span, Modifiers: mods, Type: typeName(w.Type), Name: w.Name, Init: init}, nil
	case KindMethod:
		m := &ast.MethodDecl{Span: span, Modifiers: mods, ReturnType: typeName(w.Type), Name: w.Name}
		for _, p := range w.Params {
			if p == nil || p.Kind != KindParam {
				return nil, d.fail("method %s: expected a %s node", w.Name, KindParam)
			}
			mode, err := d.mode(p.Mode)
			if err != nil {
				return nil, err
			}
			m.Params = append(m.Params, &ast.Param{Span: spanFromWire(p.Span), Mode: mode, Type: typeName(p.Type), Name: p.Name})
		}
		if m.Body, m.ExprBody, err = d.body(w); err != nil {
			return nil, fmt.Errorf("method %s: %w", w.Name, err)
		}
		return m, nil
	case KindProperty:
		p := &ast.PropertyDecl{Span: span, Modifiers: mods, Type: typeName(w.Type), Name: w.Name}
		if p.Getter, err = d.accessor(w.Getter); err != nil {
			return nil, err
		}
		if p.Setter, err = d.accessor(w.Setter); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, d.fail("unknown member kind %q", w.Kind)
	}
}

func (d *decoder) accessor(w *wireNode) (*ast.Accessor, error) {
	if w == nil {
		return nil, nil
	}
	if w.Kind != KindAccessor {
		return nil, d.fail("expected a %s node, got %q", KindAccessor, w.Kind)
	}
	a := &ast.Accessor{Span: spanFromWire(w.Span)}
	switch w.Name {
	case "get":
		a.Kind = ast.AccessorGet
	case "set":
		a.Kind = ast.AccessorSet
	default:
		return nil, d.fail("unknown accessor %q", w.Name)
	}
	var err error
	if a.Body, a.ExprBody, err = d.body(w); err != nil {
		return nil, err
	}
	return a, nil
}

func (d *decoder) body(w *wireNode) (*ast.Block, ast.Expr, error) {
	if w.Body != nil && w.ExprBody != nil {
		return nil, nil, d.fail("both block and expression body")
	}
	if w.ExprBody != nil {
		e, err := d.expr(w.ExprBody)
		return nil, e, err
	}
	if w.Body == nil {
		return nil, nil, nil
	}
	s, err := d.stmt(w.Body)
	if err != nil {
		return nil, nil, err
	}
	b, ok := s.(*ast.Block)
	if !ok {
		return nil, nil, d.fail("body must be a %s, got %q", KindBlock, w.Body.Kind)
	}
	return b, nil, nil
}

func (d *decoder) stmts(list []*wireNode) ([]ast.Stmt, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]ast.Stmt, len(list))
	for i, w := range list {
		s, err := d.stmt(w)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (d *decoder) optStmt(w *wireNode) (ast.Stmt, error) {
	if w == nil {
		return nil, nil
	}
	return d.stmt(w)
}

func (d *decoder) stmt(w *wireNode) (ast.Stmt, error) {
	if w == nil {
		return nil, d.fail("missing statement")
	}
	span := spanFromWire(w.Span)
	switch w.Kind {
	case KindBlock:
		list, err := d.stmts(w.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Span: span, Stmts: list}, nil
	case KindExprStmt:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Span: span, X: x}, nil
	case KindLocal:
		if w.Name == "" {
			return nil, d.fail("%s without a name", KindLocal)
		}
		init, err := d.optExpr(w.Init)
		if err != nil {
			return nil, err
		}
		return &ast.LocalDecl{Span: span, Type: typeName(w.Type), Name: w.Name, Init: init}, nil
	case KindIf:
		cond, err := d.expr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.stmt(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.optStmt(w.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Span: span, Cond: cond, Then: then, Else: els}, nil
	case KindWhile:
		cond, err := d.expr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Span: span, Cond: cond, Body: body}, nil
	case KindFor:
		init, err := d.stmts(w.Inits)
		if err != nil {
			return nil, err
		}
		cond, err := d.optExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		post, err := d.exprs(w.Post)
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Span: span, Init: init, Cond: cond, Post: post, Body: body}, nil
	case KindForEach:
		coll, err := d.expr(w.Collection)
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForEachStmt{Span: span, Type: typeName(w.Type), Name: w.Name, Collection: coll, Body: body}, nil
	case KindSwitch:
		tag, err := d.expr(w.Tag)
		if err != nil {
			return nil, err
		}
		s := &ast.SwitchStmt{Span: span, Tag: tag}
		for _, sw := range w.Sections {
			if sw == nil || sw.Kind != KindSection {
				return nil, d.fail("expected a %s node", KindSection)
			}
			labels, err := d.exprs(sw.Labels)
			if err != nil {
				return nil, err
			}
			body, err := d.stmts(sw.Stmts)
			if err != nil {
				return nil, err
			}
			s.Sections = append(s.Sections, &ast.SwitchSection{Span: spanFromWire(sw.Span), Labels: labels, Default: sw.Default, Body: body})
		}
		return s, nil
	case KindReturn:
		result, err := d.optExpr(w.Result)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Span: span, Result: result}, nil
	case KindThrow:
		x, err := d.optExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &ast.ThrowStmt{Span: span, X: x}, nil
	case KindBreak:
		return &ast.BreakStmt{Span: span}, nil
	case KindContinue:
		return &ast.ContinueStmt{Span: span}, nil
	case KindGoto:
		return &ast.GotoStmt{Span: span, Label: w.Label}, nil
	case KindLabeled:
		inner, err := d.stmt(w.Stmt)
		if err != nil {
			return nil, err
		}
		return &ast.LabeledStmt{Span: span, Label: w.Label, Stmt: inner}, nil
	case KindEmpty:
		return &ast.EmptyStmt{Span: span}, nil
	default:
		return nil, d.fail("unknown statement kind %q", w.Kind)
	}
}

func (d *decoder) exprs(list []*wireNode) ([]ast.Expr, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]ast.Expr, len(list))
	for i, w := range list {
		e, err := d.expr(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (d *decoder) args(list []*wireNode) ([]*ast.Arg, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]*ast.Arg, len(list))
	for i, w := range list {
		v, err := d.expr(w)
		if err != nil {
			return nil, err
		}
		mode, err := d.mode(w.Mode)
		if err != nil {
			return nil, err
		}
		out[i] = &ast.Arg{Span: v.GetSpan(), Mode: mode, Value: v}
	}
	return out, nil
}

func (d *decoder) optExpr(w *wireNode) (ast.Expr, error) {
	if w == nil {
		return nil, nil
	}
	return d.expr(w)
}

func (d *decoder) expr(w *wireNode) (ast.Expr, error) {
	if w == nil {
		return nil, d.fail("missing expression")
	}
	span := spanFromWire(w.Span)
	switch w.Kind {
	case KindIdent:
		if w.Name == "" {
			return nil, d.fail("%s without a name", KindIdent)
		}
		return &ast.Ident{Span: span, Name: w.Name}, nil
	case KindLiteral:
		kind, ok := ast.ParseLiteralKind(w.Literal)
		if !ok {
			return nil, d.fail("unknown literal kind %q", w.Literal)
		}
		return &ast.Literal{Span: span, Kind: kind, Value: w.Value}, nil
	case KindThis:
		return &ast.ThisExpr{Span: span}, nil
	case KindTypeName:
		return &ast.TypeName{Span: span, Name: w.Name}, nil
	case KindParen:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Span: span, X: x}, nil
	case KindUnary:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Span: span, Op: w.Op, X: x, Postfix: w.Postfix}, nil
	case KindBinary:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		y, err := d.expr(w.Y)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Span: span, Op: w.Op, X: x, Y: y}, nil
	case KindAssign:
		target, err := d.expr(w.Target)
		if err != nil {
			return nil, err
		}
		value, err := d.expr(w.RHS)
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Span: span, Op: w.Op, Target: target, Value: value}, nil
	case KindCall:
		fun, err := d.expr(w.Fun)
		if err != nil {
			return nil, err
		}
		args, err := d.args(w.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Span: span, Fun: fun, Args: args}, nil
	case KindMember:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpr{Span: span, X: x, Name: w.Name}, nil
	case KindIndex:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		index, err := d.expr(w.Index)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Span: span, X: x, Index: index}, nil
	case KindCond:
		cond, err := d.expr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.expr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.expr(w.Else)
		if err != nil {
			return nil, err
		}
		return &ast.CondExpr{Span: span, Cond: cond, Then: then, Else: els}, nil
	case KindNew:
		args, err := d.args(w.Args)
		if err != nil {
			return nil, err
		}
		return &ast.NewExpr{Span: span, Type: &ast.TypeName{Name: w.Type}, Args: args}, nil
	case KindCast:
		x, err := d.expr(w.X)
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Span: span, Type: &ast.TypeName{Name: w.Type}, X: x}, nil
	case KindInterp:
		parts, err := d.exprs(w.Parts)
		if err != nil {
			return nil, err
		}
		return &ast.InterpolatedString{Span: span, Parts: parts}, nil
	default:
		return nil, d.fail("unknown expression kind %q", w.Kind)
	}
}
