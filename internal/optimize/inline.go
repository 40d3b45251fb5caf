package optimize

import (
	"strings"

	"github.com/orizon-lang/astopt/internal/ast"
)

// inlineTarget is a method whose body reduces to one side-effect-free
// expression over its parameters.
type inlineTarget struct {
	decl   *ast.MethodDecl
	params []string
	expr   ast.Expr
	free   []string // identifiers the expression reads besides parameters
	// cast is set when the expression is not known to have the declared
	// return type, so the inlined value converts explicitly.
	cast bool
}

// methodInliner replaces calls to tiny private methods by their bodies.
type methodInliner struct{}

func (p *methodInliner) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassInline,
		Name:        "Tiny method inlining",
		Description: "Inlines private single-expression methods called at least twice",
		Enabled:     true,
		Priority:    120,
	}
}

func (p *methodInliner) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	tables := make(map[*ast.TypeDecl]map[string]*inlineTarget)
	fields := make(map[*ast.TypeDecl]typeEnv)
	return ast.RewriteMembers(file, func(td *ast.TypeDecl, m ast.Member) ast.Member {
		table, ok := tables[td]
		if !ok {
			fields[td] = fieldTypes(td)
			table = inlineTable(td, fields[td])
			tables[td] = table
		}
		if len(table) == 0 {
			return m
		}
		return p.rewriteMember(m, table, fields[td], ctx)
	}), nil
}

// inlineTable returns the inlinable methods of td that are called at least
// twice from within the type.
func inlineTable(td *ast.TypeDecl, fields typeEnv) map[string]*inlineTarget {
	names := make(map[string]int)
	for _, m := range td.Members {
		switch d := m.(type) {
		case *ast.MethodDecl:
			names[d.Name]++
		case *ast.PropertyDecl:
			names[d.Name]++
		case *ast.FieldDecl:
			names[d.Name]++
		}
	}

	table := make(map[string]*inlineTarget)
	for _, m := range td.Members {
		md, ok := m.(*ast.MethodDecl)
		if !ok || names[md.Name] != 1 {
			continue
		}
		if t := inlinable(md, fields); t != nil {
			table[md.Name] = t
		}
	}
	if len(table) == 0 {
		return table
	}

	calls := make(map[string]int)
	ast.Inspect(td, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			if name, ok := selfCallee(call); ok {
				calls[name]++
			}
		}
		return true
	})
	for name := range table {
		if calls[name] < 2 {
			delete(table, name)
		}
	}
	return table
}

// inlinable checks visibility, modifiers, parameters and body shape.
func inlinable(md *ast.MethodDecl, fields typeEnv) *inlineTarget {
	if md.Modifiers.Any(ast.ModPublic | ast.ModProtected | ast.ModVirtual | ast.ModAbstract |
		ast.ModOverride | ast.ModStatic) {
		return nil
	}
	if strings.Contains(md.Name, "<") || md.ReturnType == nil || md.ReturnType.Name == "void" {
		return nil
	}
	params := make([]string, len(md.Params))
	for i, p := range md.Params {
		if p.Mode == ast.ModeRef || p.Mode == ast.ModeOut {
			return nil
		}
		params[i] = p.Name
	}

	expr := bodyExpr(md)
	if expr == nil || !sideEffectFree(expr) {
		return nil
	}

	recursive := false
	ast.Inspect(expr, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			if name, ok := selfCallee(call); ok && name == md.Name {
				recursive = true
			}
		}
		return !recursive
	})
	if recursive {
		return nil
	}

	isParam := make(map[string]bool, len(params))
	for _, p := range params {
		isParam[p] = true
	}
	var free []string
	for _, name := range ast.Idents(expr) {
		if !isParam[name] {
			free = append(free, name)
		}
	}
	env := scopeTypes(fields, md.Params, nil)
	return &inlineTarget{
		decl:   md,
		params: params,
		expr:   expr,
		free:   free,
		cast:   env.staticType(expr) != md.ReturnType.String(),
	}
}

// bodyExpr reduces a method body to a single expression: an expression
// body, `return e;`, or `var t = init; return e;` with t read once.
func bodyExpr(md *ast.MethodDecl) ast.Expr {
	if md.ExprBody != nil {
		return md.ExprBody
	}
	if md.Body == nil {
		return nil
	}
	stmts := md.Body.Stmts
	switch len(stmts) {
	case 1:
		ret, ok := stmts[0].(*ast.ReturnStmt)
		if !ok {
			return nil
		}
		return ret.Result
	case 2:
		decl, ok := stmts[0].(*ast.LocalDecl)
		if !ok || decl.Init == nil || !sideEffectFree(decl.Init) {
			return nil
		}
		ret, ok := stmts[1].(*ast.ReturnStmt)
		if !ok || ret.Result == nil {
			return nil
		}
		uses := 0
		ast.Inspect(ret.Result, func(n ast.Node) bool {
			if id, ok := n.(*ast.Ident); ok && id.Name == decl.Name {
				uses++
			}
			return true
		})
		if uses != 1 {
			return nil
		}
		return ast.MapExpr(ret.Result, func(e ast.Expr) (ast.Expr, bool) {
			if id, ok := e.(*ast.Ident); ok && id.Name == decl.Name {
				return &ast.ParenExpr{Span: decl.Init.GetSpan(), X: decl.Init}, true
			}
			return nil, false
		})
	}
	return nil
}

// selfCallee returns the method name of an unqualified or this-qualified call.
func selfCallee(call *ast.CallExpr) (string, bool) {
	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		return fun.Name, true
	case *ast.MemberExpr:
		if _, ok := ast.Unparen(fun.X).(*ast.ThisExpr); ok {
			return fun.Name, true
		}
	}
	return "", false
}

// isSimpleArg matches literals, identifiers, this and member chains over
// them: arguments that are free to evaluate any number of times.
func isSimpleArg(e ast.Expr) bool {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal, *ast.Ident, *ast.ThisExpr:
		return true
	case *ast.MemberExpr:
		return isSimpleArg(n.X)
	}
	return false
}

func (p *methodInliner) rewriteMember(m ast.Member, table map[string]*inlineTarget, fields typeEnv, ctx *Context) ast.Member {
	switch d := m.(type) {
	case *ast.MethodDecl:
		locals := make(map[string]bool)
		var body ast.Stmt
		if d.Body != nil {
			locals = ast.DeclaredLocals(d.Body)
			body = d.Body
		}
		for _, prm := range d.Params {
			locals[prm.Name] = true
		}
		mapper := p.mapper(table, locals, scopeTypes(fields, d.Params, body), ctx)
		c := *d
		if d.Body != nil {
			c.Body, _ = ast.MapStmtExprs(d.Body, mapper).(*ast.Block)
		}
		c.ExprBody = ast.MapExpr(d.ExprBody, mapper)
		if c.Body != d.Body || c.ExprBody != d.ExprBody {
			return &c
		}
	case *ast.PropertyDecl:
		value := []*ast.Param{{Type: d.Type, Name: "value"}}
		g := p.rewriteAccessor(d.Getter, value, table, fields, ctx)
		s := p.rewriteAccessor(d.Setter, value, table, fields, ctx)
		if g != d.Getter || s != d.Setter {
			c := *d
			c.Getter, c.Setter = g, s
			return &c
		}
	}
	return m
}

func (p *methodInliner) rewriteAccessor(a *ast.Accessor, value []*ast.Param, table map[string]*inlineTarget, fields typeEnv, ctx *Context) *ast.Accessor {
	if a == nil {
		return nil
	}
	locals := map[string]bool{"value": true}
	var body ast.Stmt
	if a.Body != nil {
		for name := range ast.DeclaredLocals(a.Body) {
			locals[name] = true
		}
		body = a.Body
	}
	mapper := p.mapper(table, locals, scopeTypes(fields, value, body), ctx)
	c := *a
	if a.Body != nil {
		c.Body, _ = ast.MapStmtExprs(a.Body, mapper).(*ast.Block)
	}
	c.ExprBody = ast.MapExpr(a.ExprBody, mapper)
	if c.Body == a.Body && c.ExprBody == a.ExprBody {
		return a
	}
	return &c
}

// mapper substitutes call sites. Arguments are converted to the parameter
// types and the result to the return type wherever the implicit conversion
// of the call is not already evident from declarations.
func (p *methodInliner) mapper(table map[string]*inlineTarget, locals map[string]bool, env typeEnv, ctx *Context) ast.ExprMapper {
	return func(e ast.Expr) (ast.Expr, bool) {
		call, ok := e.(*ast.CallExpr)
		if !ok {
			return nil, false
		}
		name, ok := selfCallee(call)
		if !ok {
			return nil, false
		}
		t, ok := table[name]
		if !ok || len(call.Args) != len(t.params) {
			return nil, false
		}
		for _, a := range call.Args {
			if a.Mode != ast.ModeValue || !isSimpleArg(a.Value) {
				return nil, false
			}
		}
		for _, f := range t.free {
			if locals[f] {
				return nil, false
			}
		}

		args := make(map[string]ast.Expr, len(t.params))
		for i, prm := range t.decl.Params {
			args[prm.Name] = convert(env, call.Args[i].Value, prm.Type)
		}
		body := ast.MapExpr(t.expr, func(x ast.Expr) (ast.Expr, bool) {
			if id, ok := x.(*ast.Ident); ok {
				if v, ok := args[id.Name]; ok {
					return v, true
				}
			}
			return nil, false
		})
		out := &ast.ParenExpr{Span: call.Span, X: body}
		if t.cast {
			out = &ast.ParenExpr{Span: call.Span, X: &ast.CastExpr{Span: call.Span, Type: t.decl.ReturnType, X: out}}
		}
		ctx.Record(PassInline, "Inlined call to "+name, call.Span, call.String(), out.String())
		return out, true
	}
}
