package optimize

import (
	"fmt"

	"github.com/orizon-lang/astopt/internal/ast"
)

// propertyCacher reads engine properties of one receiver once per block
// when the block touches that receiver more than once.
type propertyCacher struct{}

func (p *propertyCacher) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassPropCache,
		Name:        "Engine property caching",
		Description: "Caches repeated engine property reads on the same receiver in locals",
		Enabled:     true,
		Priority:    160,
	}
}

func (p *propertyCacher) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	return ast.RewriteBodies(file, func(_ *ast.TypeDecl, decl ast.Member, body *ast.Block) *ast.Block {
		c := &propScope{
			ctx:   ctx,
			fp:    ctx.Fingerprints(),
			mut:   collectMutations(body, methodLocals(decl, body), false),
			names: newTempNamer("__prop_", body),
		}
		out, _ := ast.RewriteStmtLists(body, c.rewrite).(*ast.Block)
		return out
	}), nil
}

type propScope struct {
	ctx   *Context
	fp    *Fingerprinter
	mut   *mutations
	names *tempNamer
}

type propAccess struct {
	expr *ast.MemberExpr
	stmt int
}

// accesses returns the engine property reads evaluated unconditionally by
// the statements of list. A read that is the whole initializer of a local
// already is a cache and is skipped.
func (c *propScope) accesses(list []ast.Stmt) []propAccess {
	var out []propAccess
	for i, st := range list {
		var whole ast.Expr
		if d, ok := st.(*ast.LocalDecl); ok {
			whole = ast.Unparen(d.Init)
		}
		for _, root := range stmtExprs(st) {
			visitUnconditional(root, func(e ast.Expr) bool {
				m, ok := e.(*ast.MemberExpr)
				if !ok || e == whole {
					return true
				}
				if _, known := engineProperties[m.Name]; !known || !isSimpleChain(m.X) || !c.mut.stable(m) {
					return true
				}
				out = append(out, propAccess{expr: m, stmt: i})
				return false
			})
		}
	}
	return out
}

func (c *propScope) rewrite(list []ast.Stmt) ([]ast.Stmt, bool) {
	accs := c.accesses(list)
	if len(accs) < 2 {
		return list, false
	}

	// Receivers in first-seen order.
	var receivers [][]propAccess
	for _, a := range accs {
		placed := false
		for ri, r := range receivers {
			if c.fp.Same(r[0].expr.X, a.expr.X) {
				receivers[ri] = append(r, a)
				placed = true
				break
			}
		}
		if !placed {
			receivers = append(receivers, []propAccess{a})
		}
	}

	replaced := make(map[ast.Expr]string)
	inserts := make(map[int][]ast.Stmt)
	added := 0
	for _, group := range receivers {
		if len(group) < 2 {
			continue
		}
		// One temporary per distinct property of this receiver.
		var distinct [][]propAccess
		for _, a := range group {
			placed := false
			for di, d := range distinct {
				if d[0].expr.Name == a.expr.Name {
					distinct[di] = append(d, a)
					placed = true
					break
				}
			}
			if !placed {
				distinct = append(distinct, []propAccess{a})
			}
		}
		for _, d := range distinct {
			first := d[0]
			name := c.names.fresh()
			inserts[first.stmt] = append(inserts[first.stmt], tempDecl(name, first.expr))
			for _, a := range d {
				replaced[a.expr] = name
			}
			added++
			c.ctx.Record(PassPropCache,
				fmt.Sprintf("Cached %s in %s (%d reads)", first.expr.String(), name, len(d)),
				first.expr.Span, first.expr.String(), name)
		}
	}
	if added == 0 {
		return list, false
	}

	mapper := replaceNodes(replaced)
	out := make([]ast.Stmt, 0, len(list)+added)
	for i, st := range list {
		out = append(out, inserts[i]...)
		out = append(out, ast.MapShallowExprs(st, mapper))
	}
	return out, true
}
