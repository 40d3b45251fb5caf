package optimize

import (
	"strconv"
	"strings"

	"github.com/orizon-lang/astopt/internal/ast"
)

// truth is the result of evaluating a condition at compile time.
type truth int

const (
	unknown truth = iota
	alwaysTrue
	alwaysFalse
)

func truthOf(b bool) truth {
	if b {
		return alwaysTrue
	}
	return alwaysFalse
}

func (t truth) not() truth {
	switch t {
	case alwaysTrue:
		return alwaysFalse
	case alwaysFalse:
		return alwaysTrue
	default:
		return unknown
	}
}

// evalCondition folds boolean literals, negation, the short-circuit
// operators, boolean equality and comparisons between numeric literals.
// A short-circuit operator folds only on its left operand, so a read on
// the left is never dropped.
func evalCondition(e ast.Expr) truth {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal:
		if n.Kind == ast.LitBool {
			return truthOf(n.Value == "true")
		}
	case *ast.UnaryExpr:
		if n.Op == "!" {
			return evalCondition(n.X).not()
		}
	case *ast.BinaryExpr:
		switch n.Op {
		case "&&":
			l := evalCondition(n.X)
			if l == alwaysFalse {
				return alwaysFalse
			}
			r := evalCondition(n.Y)
			if l == alwaysTrue {
				return r
			}
		case "||":
			l := evalCondition(n.X)
			if l == alwaysTrue {
				return alwaysTrue
			}
			r := evalCondition(n.Y)
			if l == alwaysFalse {
				return r
			}
		case "==", "!=":
			if t := compareBools(n.Op, n.X, n.Y); t != unknown {
				return t
			}
			return compareNumbers(n.Op, n.X, n.Y)
		case "<", "<=", ">", ">=":
			return compareNumbers(n.Op, n.X, n.Y)
		}
	}
	return unknown
}

func compareBools(op string, x, y ast.Expr) truth {
	l, r := evalCondition(x), evalCondition(y)
	if l == unknown || r == unknown {
		return unknown
	}
	if op == "==" {
		return truthOf(l == r)
	}
	return truthOf(l != r)
}

func compareNumbers(op string, x, y ast.Expr) truth {
	l, lok := numericValue(x)
	r, rok := numericValue(y)
	if !lok || !rok {
		return unknown
	}
	switch op {
	case "==":
		return truthOf(l == r)
	case "!=":
		return truthOf(l != r)
	case "<":
		return truthOf(l < r)
	case "<=":
		return truthOf(l <= r)
	case ">":
		return truthOf(l > r)
	case ">=":
		return truthOf(l >= r)
	}
	return unknown
}

// numericValue reads an int or float literal, with an optional unary sign.
func numericValue(e ast.Expr) (float64, bool) {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal:
		if n.Kind != ast.LitInt && n.Kind != ast.LitFloat {
			return 0, false
		}
		return parseNumber(n.Value)
	case *ast.UnaryExpr:
		if n.Postfix || (n.Op != "-" && n.Op != "+") {
			return 0, false
		}
		v, ok := numericValue(n.X)
		if n.Op == "-" {
			v = -v
		}
		return v, ok
	}
	return 0, false
}

func parseNumber(text string) (float64, bool) {
	s := strings.ReplaceAll(text, "_", "")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = strings.TrimRight(s, "uUlL")
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return float64(v), err == nil
	}
	s = strings.TrimRight(s, "fFdDmMuUlL")
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// intValue reads an integer literal, with an optional unary minus.
func intValue(e ast.Expr) (int64, bool) {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal:
		if n.Kind != ast.LitInt {
			return 0, false
		}
		v, err := strconv.ParseInt(strings.TrimRight(strings.ReplaceAll(n.Value, "_", ""), "uUlL"), 10, 64)
		return v, err == nil
	case *ast.UnaryExpr:
		if n.Op != "-" || n.Postfix {
			return 0, false
		}
		v, ok := intValue(n.X)
		return -v, ok
	}
	return 0, false
}

// constantFolder resolves conditions whose value is fixed at compile time.
type constantFolder struct{}

func (p *constantFolder) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassConstFold,
		Name:        "Constant folding",
		Description: "Resolves if, while and ternary conditions that are constant",
		Enabled:     true,
		Priority:    100,
	}
}

func (p *constantFolder) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	var fold ast.ExprMapper
	fold = func(e ast.Expr) (ast.Expr, bool) {
		c, ok := e.(*ast.CondExpr)
		if !ok {
			return nil, false
		}
		var branch ast.Expr
		switch evalCondition(c.Cond) {
		case alwaysTrue:
			branch = c.Then
		case alwaysFalse:
			branch = c.Else
		default:
			return nil, false
		}
		out := ast.MapExpr(branch, fold)
		ctx.Record(PassConstFold, "Folded constant conditional expression", c.Span, c.String(), out.String())
		return out, true
	}
	file = ast.MapFileExprs(file, fold)

	return ast.RewriteBodies(file, func(_ *ast.TypeDecl, _ ast.Member, body *ast.Block) *ast.Block {
		out, _ := ast.RewriteStmts(body, func(s ast.Stmt) ast.Stmt {
			return p.foldStmt(s, ctx)
		}).(*ast.Block)
		return out
	}), nil
}

func (p *constantFolder) foldStmt(s ast.Stmt, ctx *Context) ast.Stmt {
	switch n := s.(type) {
	case *ast.IfStmt:
		var out ast.Stmt
		switch evalCondition(n.Cond) {
		case alwaysTrue:
			if n.Else != nil && containsLabel(n.Else) {
				return s
			}
			out = unwrapSingle(n.Then)
			ctx.Record(PassConstFold, "Removed always-true if condition", n.Span, n.String(), out.String())
		case alwaysFalse:
			if containsLabel(n.Then) {
				return s
			}
			out = n.Else
			if out == nil {
				out = &ast.EmptyStmt{Span: n.Span}
			} else {
				out = unwrapSingle(out)
			}
			ctx.Record(PassConstFold, "Removed always-false if branch", n.Span, n.String(), out.String())
		default:
			return s
		}
		return out
	case *ast.WhileStmt:
		if evalCondition(n.Cond) == alwaysFalse && !containsLabel(n.Body) {
			out := &ast.EmptyStmt{Span: n.Span}
			ctx.Record(PassConstFold, "Removed loop that never runs", n.Span, n.String(), out.String())
			return out
		}
	}
	return s
}

// containsLabel reports whether a goto could jump into s.
func containsLabel(s ast.Stmt) bool {
	found := false
	ast.Inspect(s, func(n ast.Node) bool {
		if _, ok := n.(*ast.LabeledStmt); ok {
			found = true
		}
		return !found
	})
	return found
}

// unwrapSingle returns the only statement of a block when it declares
// nothing; otherwise the block stays to keep its scope.
func unwrapSingle(s ast.Stmt) ast.Stmt {
	b, ok := s.(*ast.Block)
	if !ok || len(b.Stmts) != 1 {
		return s
	}
	if _, decl := b.Stmts[0].(*ast.LocalDecl); decl {
		return s
	}
	return b.Stmts[0]
}
