package optimize

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/astopt/internal/ast"
)

// deadCodeEliminator removes unreachable statements and empty statements
// from statement lists.
type deadCodeEliminator struct{}

func (p *deadCodeEliminator) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassDeadCode,
		Name:        "Dead code elimination",
		Description: "Removes statements after return, throw, break, continue and goto",
		Enabled:     true,
		Priority:    110,
	}
}

func (p *deadCodeEliminator) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	return ast.RewriteBodies(file, func(_ *ast.TypeDecl, _ ast.Member, body *ast.Block) *ast.Block {
		out, _ := ast.RewriteStmtLists(body, func(list []ast.Stmt) ([]ast.Stmt, bool) {
			return p.sweep(list, ctx)
		}).(*ast.Block)
		return out
	}), nil
}

func (p *deadCodeEliminator) sweep(list []ast.Stmt, ctx *Context) ([]ast.Stmt, bool) {
	out := make([]ast.Stmt, 0, len(list))
	changed := false

	for i := 0; i < len(list); i++ {
		s := list[i]
		if isEmptyStmt(s) {
			ctx.Record(PassDeadCode, "Removed empty statement", s.GetSpan(), s.String(), "")
			changed = true
			continue
		}
		out = append(out, s)
		if !isTerminating(s) {
			continue
		}

		// Everything up to the next label is unreachable.
		end := i + 1
		for end < len(list) {
			if _, ok := list[end].(*ast.LabeledStmt); ok {
				break
			}
			end++
		}
		dead := list[i+1 : end]
		if len(dead) == 0 {
			continue
		}
		if end < len(list) && declaresUsedLater(dead, list[end:]) {
			continue
		}
		ctx.Record(PassDeadCode, unreachableDescription(s, len(dead)), dead[0].GetSpan(), renderStmts(dead), "")
		changed = true
		i = end - 1
	}

	if !changed {
		return list, false
	}
	return out, true
}

func isEmptyStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.EmptyStmt:
		return true
	case *ast.Block:
		return len(n.Stmts) == 0
	}
	return false
}

// isTerminating reports whether control never flows past s.
func isTerminating(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt, *ast.ThrowStmt, *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		return true
	case *ast.IfStmt:
		return n.Else != nil && isTerminating(n.Then) && isTerminating(n.Else)
	case *ast.Block:
		return blockAlwaysTerminates(n)
	case *ast.LabeledStmt:
		return isTerminating(n.Stmt)
	}
	return false
}

// blockAlwaysTerminates reports whether a block reaches a terminator that
// no later label can bypass.
func blockAlwaysTerminates(b *ast.Block) bool {
	terminated := false
	for _, s := range b.Stmts {
		if _, ok := s.(*ast.LabeledStmt); ok {
			terminated = false
		}
		if isTerminating(s) {
			terminated = true
		}
	}
	return terminated
}

// declaresUsedLater reports whether dead declares a local that rest reads.
func declaresUsedLater(dead, rest []ast.Stmt) bool {
	declared := make(map[string]bool)
	for _, s := range dead {
		if d, ok := s.(*ast.LocalDecl); ok {
			declared[d.Name] = true
		}
	}
	if len(declared) == 0 {
		return false
	}
	for _, s := range rest {
		for _, name := range ast.Idents(s) {
			if declared[name] {
				return true
			}
		}
	}
	return false
}

func unreachableDescription(term ast.Stmt, n int) string {
	kind := terminatorKind(term)
	if n == 1 {
		return fmt.Sprintf("Removed unreachable statement after %s", kind)
	}
	return fmt.Sprintf("Removed %d unreachable statements after %s", n, kind)
}

func terminatorKind(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return "return"
	case *ast.ThrowStmt:
		return "throw"
	case *ast.BreakStmt:
		return "break"
	case *ast.ContinueStmt:
		return "continue"
	case *ast.GotoStmt:
		return "goto"
	case *ast.IfStmt:
		return "terminating if"
	case *ast.LabeledStmt:
		return terminatorKind(n.Stmt)
	default:
		return "terminating block"
	}
}

func renderStmts(list []ast.Stmt) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
