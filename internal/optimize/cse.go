package optimize

import (
	"fmt"
	"sort"

	"github.com/orizon-lang/astopt/internal/ast"
)

// occurrence is one candidate expression inside a statement list.
type occurrence struct {
	expr  ast.Expr
	stmt  int        // index of the statement in the list
	outer []ast.Expr // enclosing candidates, innermost last
}

// commonSubexprEliminator shares repeated pure calls and engine property
// reads within one block through a temporary.
type commonSubexprEliminator struct{}

func (p *commonSubexprEliminator) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassCSE,
		Name:        "Common subexpression elimination",
		Description: "Computes repeated pure expressions once per block",
		Enabled:     true,
		Priority:    150,
	}
}

func (p *commonSubexprEliminator) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	return ast.RewriteBodies(file, func(_ *ast.TypeDecl, decl ast.Member, body *ast.Block) *ast.Block {
		locals := methodLocals(decl, body)
		e := &cseScope{
			ctx:   ctx,
			fp:    ctx.Fingerprints(),
			mut:   collectMutations(body, locals, false),
			names: newTempNamer("__cse_", body),
		}
		out, _ := ast.RewriteStmtLists(body, e.rewrite).(*ast.Block)
		return out
	}), nil
}

type cseScope struct {
	ctx   *Context
	fp    *Fingerprinter
	mut   *mutations
	names *tempNamer
}

// isCSECandidate reports whether e may be shared: an allow-listed pure
// call, or an engine property read on a known component, whose variables
// are never written in the method.
func (s *cseScope) isCSECandidate(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.CallExpr:
		if !isPureCall(n) {
			return false
		}
	case *ast.MemberExpr:
		if !expensiveProperties[n.Name] || !isComponent(n.X) {
			return false
		}
	default:
		return false
	}
	return s.mut.stable(e)
}

// isComponent matches transform, this.transform, other.transform and the
// other well-known component names.
func isComponent(e ast.Expr) bool {
	switch n := ast.Unparen(e).(type) {
	case *ast.Ident:
		return componentNames[n.Name]
	case *ast.MemberExpr:
		if _, ok := ast.Unparen(n.X).(*ast.ThisExpr); ok {
			return componentNames[n.Name]
		}
		return n.Name == "transform" && isSimpleChain(n.X)
	}
	return false
}

// isSimpleChain matches identifiers, this and member chains over them.
func isSimpleChain(e ast.Expr) bool {
	switch n := ast.Unparen(e).(type) {
	case *ast.Ident, *ast.ThisExpr:
		return true
	case *ast.MemberExpr:
		return isSimpleChain(n.X)
	}
	return false
}

// collectOccurrences finds candidates in the unconditionally evaluated
// expressions of each statement, recording nesting between candidates.
func (s *cseScope) collectOccurrences(list []ast.Stmt) []*occurrence {
	var occs []*occurrence
	for i, st := range list {
		for _, root := range stmtExprs(st) {
			var stack []ast.Expr
			var visit func(e ast.Expr)
			visit = func(e ast.Expr) {
				visitUnconditional(e, func(x ast.Expr) bool {
					if x == e {
						return true
					}
					if !s.isCSECandidate(x) {
						return true
					}
					occs = append(occs, &occurrence{
						expr:  x,
						stmt:  i,
						outer: append([]ast.Expr(nil), stack...),
					})
					stack = append(stack, x)
					visit(x)
					stack = stack[:len(stack)-1]
					return false
				})
			}
			if s.isCSECandidate(root) {
				occs = append(occs, &occurrence{expr: root, stmt: i})
				stack = append(stack, root)
			}
			visit(root)
		}
	}
	return occs
}

func (s *cseScope) rewrite(list []ast.Stmt) ([]ast.Stmt, bool) {
	occs := s.collectOccurrences(list)
	if len(occs) < 2 {
		return list, false
	}

	// Group by structure in first-seen order.
	var groups [][]*occurrence
	for _, o := range occs {
		placed := false
		for gi, g := range groups {
			if s.fp.Same(g[0].expr, o.expr) {
				groups[gi] = append(g, o)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []*occurrence{o})
		}
	}

	// Larger expressions first, so an inner repeat inside a shared outer
	// expression is covered by the outer temporary.
	sort.SliceStable(groups, func(i, j int) bool {
		return exprSize(groups[i][0].expr) > exprSize(groups[j][0].expr)
	})

	replaced := make(map[ast.Expr]string)
	inserts := make(map[int][]ast.Stmt)
	chosen := 0
	for _, g := range groups {
		var live []*occurrence
		for _, o := range g {
			if !coveredBy(o, replaced) {
				live = append(live, o)
			}
		}
		if len(live) < 2 {
			continue
		}
		first := live[0]
		name := s.names.fresh()
		inserts[first.stmt] = append(inserts[first.stmt], tempDecl(name, first.expr))
		for _, o := range live {
			replaced[o.expr] = name
		}
		chosen++
		s.ctx.Record(PassCSE,
			fmt.Sprintf("Shared %d evaluations of %s in %s", len(live), first.expr.String(), name),
			first.expr.GetSpan(), first.expr.String(), name)
	}
	if chosen == 0 {
		return list, false
	}

	mapper := replaceNodes(replaced)
	out := make([]ast.Stmt, 0, len(list)+chosen)
	for i, st := range list {
		out = append(out, inserts[i]...)
		out = append(out, ast.MapShallowExprs(st, mapper))
	}
	return out, true
}

// coveredBy reports whether o sits inside an expression already replaced.
func coveredBy(o *occurrence, replaced map[ast.Expr]string) bool {
	for _, outer := range o.outer {
		if _, ok := replaced[outer]; ok {
			return true
		}
	}
	return false
}

func exprSize(e ast.Expr) int {
	n := 0
	ast.Inspect(e, func(ast.Node) bool {
		n++
		return true
	})
	return n
}
