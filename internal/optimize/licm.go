package optimize

import (
	"github.com/orizon-lang/astopt/internal/ast"
)

// invariantHoister moves pure calls whose operands do not change inside a
// loop to a temporary declared before the loop.
type invariantHoister struct{}

func (p *invariantHoister) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassLICM,
		Name:        "Loop-invariant code motion",
		Description: "Hoists pure calls with loop-invariant operands out of loops",
		Enabled:     true,
		Priority:    140,
	}
}

func (p *invariantHoister) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	return ast.RewriteBodies(file, func(_ *ast.TypeDecl, decl ast.Member, body *ast.Block) *ast.Block {
		h := &hoister{
			ctx:     ctx,
			fp:      ctx.Fingerprints(),
			locals:  methodLocals(decl, body),
			names:   newTempNamer("__licm_", body),
			wrapped: make(map[*ast.Block]bool),
		}
		out, _ := ast.RewriteStmts(body, h.visit).(*ast.Block)
		return out
	}), nil
}

type hoister struct {
	ctx     *Context
	fp      *Fingerprinter
	locals  map[string]bool
	names   *tempNamer
	wrapped map[*ast.Block]bool
}

// visit runs bottom-up, so inner loops are handled before the loops that
// contain them. A hoisted loop becomes a block holding the temporaries and
// the loop; when that block sits in a statement list it is spliced in.
func (h *hoister) visit(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.Block:
		if list, ok := h.splice(n.Stmts); ok {
			c := *n
			c.Stmts = list
			return &c
		}
	case *ast.SwitchStmt:
		changed := false
		secs := make([]*ast.SwitchSection, len(n.Sections))
		for i, sec := range n.Sections {
			secs[i] = sec
			if list, ok := h.splice(sec.Body); ok {
				c := *sec
				c.Body = list
				secs[i] = &c
				changed = true
			}
		}
		if changed {
			c := *n
			c.Sections = secs
			return &c
		}
	case *ast.ForStmt, *ast.WhileStmt, *ast.ForEachStmt:
		return h.hoist(s)
	}
	return s
}

func (h *hoister) splice(list []ast.Stmt) ([]ast.Stmt, bool) {
	return spliceBlocks(list, h.wrapped)
}

// spliceBlocks replaces every block of list found in wrapped by its
// statements.
func spliceBlocks(list []ast.Stmt, wrapped map[*ast.Block]bool) ([]ast.Stmt, bool) {
	var out []ast.Stmt
	for i, s := range list {
		b, ok := s.(*ast.Block)
		if ok && wrapped[b] {
			if out == nil {
				out = append([]ast.Stmt{}, list[:i]...)
			}
			out = append(out, b.Stmts...)
			continue
		}
		if out != nil {
			out = append(out, s)
		}
	}
	return out, out != nil
}

// loopParts returns the condition a loop tests before every iteration,
// the post expressions run after each one, and its body.
func loopParts(s ast.Stmt) (cond ast.Expr, post []ast.Expr, body ast.Stmt) {
	switch n := s.(type) {
	case *ast.ForStmt:
		return n.Cond, n.Post, n.Body
	case *ast.WhileStmt:
		return n.Cond, nil, n.Body
	case *ast.ForEachStmt:
		return nil, nil, n.Body
	}
	return nil, nil, nil
}

// runsAtLeastOnce reports whether the body of loop is known to be entered.
// Only constant conditions and counting loops with literal bounds qualify.
func runsAtLeastOnce(loop ast.Stmt) bool {
	switch n := loop.(type) {
	case *ast.WhileStmt:
		return evalCondition(n.Cond) == alwaysTrue
	case *ast.ForStmt:
		if n.Cond == nil || evalCondition(n.Cond) == alwaysTrue {
			return true
		}
		if len(n.Init) != 1 {
			return false
		}
		decl, ok := n.Init[0].(*ast.LocalDecl)
		if !ok {
			return false
		}
		from, ok := intValue(decl.Init)
		if !ok {
			return false
		}
		cond, ok := ast.Unparen(n.Cond).(*ast.BinaryExpr)
		if !ok || !isIdent(cond.X, decl.Name) {
			return false
		}
		to, ok := intValue(cond.Y)
		if !ok {
			return false
		}
		return evalCondition(ast.Bin(ast.Int(from), cond.Op, ast.Int(to))) == alwaysTrue
	}
	return false
}

// straightLine returns the leading statements of a loop body that run on
// every entry into the body before anything can branch or leave it.
func straightLine(body ast.Stmt) []ast.Stmt {
	list := []ast.Stmt{body}
	if b, ok := body.(*ast.Block); ok {
		list = b.Stmts
	}
	for i, st := range list {
		switch st.(type) {
		case *ast.ExprStmt, *ast.LocalDecl:
		default:
			return list[:i]
		}
	}
	return list
}

func (h *hoister) hoist(loop ast.Stmt) ast.Stmt {
	cond, post, body := loopParts(loop)
	mut := collectMutations(loop, h.locals, true)
	entered := runsAtLeastOnce(loop)

	// A call that may throw is only moved where it was certain to run
	// before: the loop condition, or the straight-line head of a body that
	// is known to be entered.
	var candidates []ast.Expr
	collect := func(mayThrow bool) func(ast.Expr) bool {
		return func(e ast.Expr) bool {
			call, ok := e.(*ast.CallExpr)
			if !ok {
				return true
			}
			if _, pure := staticPureCall(call); !pure || !mut.stable(call) {
				return true
			}
			if !mayThrow && !cannotThrow(call) {
				return true
			}
			candidates = append(candidates, call)
			return false
		}
	}
	if cond != nil {
		visitUnconditional(cond, collect(true))
	}
	if entered {
		for _, st := range straightLine(body) {
			walkUnconditional(st, func(e ast.Expr) { visitUnconditional(e, collect(true)) })
		}
	}
	walkUnconditional(body, func(e ast.Expr) {
		visitUnconditional(e, collect(false))
	})
	for _, e := range post {
		visitUnconditional(e, collect(false))
	}
	if len(candidates) == 0 {
		return loop
	}

	// Dedupe in first-seen order.
	var unique []ast.Expr
	for _, c := range candidates {
		dup := false
		for _, u := range unique {
			if h.fp.Same(c, u) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, c)
		}
	}

	out := loop
	var decls []ast.Stmt
	for _, expr := range unique {
		name := h.names.fresh()
		decls = append(decls, tempDecl(name, expr))
		target := expr
		out = replaceInLoop(out, func(e ast.Expr) (ast.Expr, bool) {
			if h.fp.Same(e, target) {
				return &ast.Ident{Span: e.GetSpan(), Name: name}, true
			}
			return nil, false
		})
		h.ctx.Record(PassLICM, "Hoisted loop-invariant call "+expr.String()+" into "+name,
			expr.GetSpan(), expr.String(), name)
	}

	block := &ast.Block{Span: loop.GetSpan(), Stmts: append(decls, out)}
	h.wrapped[block] = true
	return block
}

// replaceInLoop rewrites the per-iteration expressions and the body of a
// loop; a foreach collection is evaluated once and left alone.
func replaceInLoop(loop ast.Stmt, fn ast.ExprMapper) ast.Stmt {
	switch n := loop.(type) {
	case *ast.ForStmt:
		c := *n
		c.Cond = ast.MapExpr(n.Cond, fn)
		post := make([]ast.Expr, len(n.Post))
		for i, e := range n.Post {
			post[i] = ast.MapExpr(e, fn)
		}
		c.Post = post
		c.Body = ast.MapStmtExprs(n.Body, fn)
		return &c
	case *ast.WhileStmt:
		c := *n
		c.Cond = ast.MapExpr(n.Cond, fn)
		c.Body = ast.MapStmtExprs(n.Body, fn)
		return &c
	case *ast.ForEachStmt:
		c := *n
		c.Body = ast.MapStmtExprs(n.Body, fn)
		return &c
	}
	return loop
}

// walkUnconditional calls fn with the expressions of s that run whenever s
// runs. Branches of if and switch statements and nested loops are skipped;
// their conditions and tags are still visited.
func walkUnconditional(s ast.Stmt, fn func(ast.Expr)) {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			walkUnconditional(st, fn)
		}
	case *ast.LabeledStmt:
		walkUnconditional(n.Stmt, fn)
	case *ast.ForStmt, *ast.WhileStmt, *ast.ForEachStmt:
		return
	default:
		for _, e := range stmtExprs(s) {
			fn(e)
		}
	}
}
