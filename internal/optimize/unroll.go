package optimize

import (
	"fmt"

	"github.com/orizon-lang/astopt/internal/ast"
)

const (
	maxUnrollIterations = 4
	maxUnrollBodyStmts  = 5
)

// countingLoop is a for loop with a literal trip count.
type countingLoop struct {
	induction string
	start     int64
	count     int64
	body      []ast.Stmt
}

// detectCountingLoop matches
//
//	for (int i = C0; i < C1 | i <= C1; i++ | ++i | i += 1) body
func detectCountingLoop(loop *ast.ForStmt) *countingLoop {
	if len(loop.Init) != 1 || len(loop.Post) != 1 || loop.Cond == nil {
		return nil
	}
	decl, ok := loop.Init[0].(*ast.LocalDecl)
	if !ok || (decl.Type != nil && decl.Type.Name != "int") {
		return nil
	}
	start, ok := intValue(decl.Init)
	if !ok {
		return nil
	}

	cond, ok := ast.Unparen(loop.Cond).(*ast.BinaryExpr)
	if !ok || !isIdent(cond.X, decl.Name) {
		return nil
	}
	end, ok := intValue(cond.Y)
	if !ok {
		return nil
	}
	var count int64
	switch cond.Op {
	case "<":
		count = end - start
	case "<=":
		count = end - start + 1
	default:
		return nil
	}

	if !isUnitStep(loop.Post[0], decl.Name) {
		return nil
	}

	body := []ast.Stmt{loop.Body}
	if b, ok := loop.Body.(*ast.Block); ok {
		body = b.Stmts
	}
	return &countingLoop{induction: decl.Name, start: start, count: count, body: body}
}

func isIdent(e ast.Expr, name string) bool {
	id, ok := ast.Unparen(e).(*ast.Ident)
	return ok && id.Name == name
}

func isUnitStep(post ast.Expr, name string) bool {
	switch n := post.(type) {
	case *ast.UnaryExpr:
		return n.Op == "++" && isIdent(n.X, name)
	case *ast.AssignExpr:
		v, ok := intValue(n.Value)
		return n.Op == "+=" && isIdent(n.Target, name) && ok && v == 1
	}
	return false
}

// escapes reports whether a statement list can leave one iteration early
// or jump: return, throw, goto and labels anywhere, break outside a nested
// loop or switch, continue outside a nested loop.
func escapes(list []ast.Stmt) bool {
	found := false
	var walk func(s ast.Stmt, inLoop, inSwitch bool)
	walk = func(s ast.Stmt, inLoop, inSwitch bool) {
		if found || s == nil {
			return
		}
		switch n := s.(type) {
		case *ast.ReturnStmt, *ast.ThrowStmt, *ast.GotoStmt, *ast.LabeledStmt:
			found = true
		case *ast.BreakStmt:
			found = !inLoop && !inSwitch
		case *ast.ContinueStmt:
			found = !inLoop
		case *ast.Block:
			for _, st := range n.Stmts {
				walk(st, inLoop, inSwitch)
			}
		case *ast.IfStmt:
			walk(n.Then, inLoop, inSwitch)
			walk(n.Else, inLoop, inSwitch)
		case *ast.WhileStmt:
			walk(n.Body, true, inSwitch)
		case *ast.ForStmt:
			walk(n.Body, true, inSwitch)
		case *ast.ForEachStmt:
			walk(n.Body, true, inSwitch)
		case *ast.SwitchStmt:
			for _, sec := range n.Sections {
				for _, st := range sec.Body {
					walk(st, inLoop, true)
				}
			}
		}
	}
	for _, s := range list {
		walk(s, false, false)
	}
	return found
}

// loopUnroller replaces small counting loops by straight-line copies.
type loopUnroller struct{}

func (p *loopUnroller) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassUnroll,
		Name:        "Small loop unrolling",
		Description: "Unrolls counting loops with at most four iterations",
		Enabled:     true,
		Priority:    130,
	}
}

func (p *loopUnroller) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	return ast.RewriteBodies(file, func(_ *ast.TypeDecl, _ ast.Member, body *ast.Block) *ast.Block {
		// Unrolled loops without their own locals are spliced into the
		// enclosing statement list.
		flat := make(map[*ast.Block]bool)
		out := ast.RewriteStmts(body, func(s ast.Stmt) ast.Stmt {
			loop, ok := s.(*ast.ForStmt)
			if !ok {
				return s
			}
			unrolled, n, scoped := p.unroll(loop)
			if unrolled == nil {
				return s
			}
			if !scoped {
				flat[unrolled] = true
			}
			ctx.Record(PassUnroll, fmt.Sprintf("Unrolled loop with %d iterations", n),
				loop.Span, loop.String(), unrolled.String())
			return unrolled
		})
		if len(flat) > 0 {
			out = ast.RewriteStmtLists(out, func(list []ast.Stmt) ([]ast.Stmt, bool) {
				return spliceBlocks(list, flat)
			})
		}
		block, _ := out.(*ast.Block)
		return block
	}), nil
}

// unroll returns the straight-line replacement of loop, its iteration
// count and whether each iteration keeps its own block for local scoping.
func (p *loopUnroller) unroll(loop *ast.ForStmt) (*ast.Block, int64, bool) {
	info := detectCountingLoop(loop)
	if info == nil || info.count < 1 || info.count > maxUnrollIterations {
		return nil, 0, false
	}
	if len(info.body) > maxUnrollBodyStmts || escapes(info.body) {
		return nil, 0, false
	}
	if collectMutations(loop.Body, nil, false).roots[info.induction] {
		return nil, 0, false
	}

	scoped := false
	for _, s := range info.body {
		if _, ok := s.(*ast.LocalDecl); ok {
			scoped = true
		}
	}

	out := &ast.Block{Span: loop.Span}
	for k := int64(0); k < info.count; k++ {
		value := info.start + k
		subst := func(e ast.Expr) (ast.Expr, bool) {
			if id, ok := e.(*ast.Ident); ok && id.Name == info.induction {
				lit := ast.Int(value)
				lit.Span = id.Span
				return lit, true
			}
			return nil, false
		}
		iteration := make([]ast.Stmt, len(info.body))
		for j, s := range info.body {
			iteration[j] = ast.MapStmtExprs(s, subst)
		}
		if scoped {
			out.Stmts = append(out.Stmts, &ast.Block{Span: loop.Body.GetSpan(), Stmts: iteration})
		} else {
			out.Stmts = append(out.Stmts, iteration...)
		}
	}
	return out, info.count, scoped
}
