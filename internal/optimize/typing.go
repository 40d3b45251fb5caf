package optimize

import (
	"strings"

	"github.com/orizon-lang/astopt/internal/ast"
)

// Built-in numeric types in widening order.
var numericRank = map[string]int{
	"int": 1, "long": 2, "float": 3, "double": 4,
}

// typeEnv maps names in scope to their declared types. An empty type marks
// a name declared with var or declared twice with different types.
type typeEnv map[string]string

func (env typeEnv) declare(name string, t *ast.TypeName) {
	typ := ""
	if t != nil {
		typ = t.String()
	}
	if prev, ok := env[name]; ok && prev != typ {
		typ = ""
	}
	env[name] = typ
}

// fieldTypes returns the declared types of the fields and properties of td.
func fieldTypes(td *ast.TypeDecl) typeEnv {
	env := make(typeEnv)
	for _, m := range td.Members {
		switch d := m.(type) {
		case *ast.FieldDecl:
			env.declare(d.Name, d.Type)
		case *ast.PropertyDecl:
			env.declare(d.Name, d.Type)
		}
	}
	return env
}

// scopeTypes layers params and the locals declared in body over fields.
func scopeTypes(fields typeEnv, params []*ast.Param, body ast.Stmt) typeEnv {
	locals := make(typeEnv)
	for _, p := range params {
		locals.declare(p.Name, p.Type)
	}
	if body != nil {
		ast.Inspect(body, func(n ast.Node) bool {
			if d, ok := n.(*ast.LocalDecl); ok {
				locals.declare(d.Name, d.Type)
			}
			return true
		})
	}
	env := make(typeEnv, len(fields)+len(locals))
	for k, v := range fields {
		env[k] = v
	}
	for k, v := range locals {
		env[k] = v
	}
	return env
}

// staticType returns the type of e when it follows from literals and
// declarations alone, or "" when it does not.
func (env typeEnv) staticType(e ast.Expr) string {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal:
		return literalType(n)
	case *ast.Ident:
		return env[n.Name]
	case *ast.CastExpr:
		return n.Type.String()
	case *ast.UnaryExpr:
		switch n.Op {
		case "!":
			return "bool"
		case "-", "+":
			return env.staticType(n.X)
		}
	case *ast.BinaryExpr:
		switch n.Op {
		case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
			return "bool"
		case "+", "-", "*", "/", "%":
			return promote(env.staticType(n.X), env.staticType(n.Y))
		}
	}
	return ""
}

// promote applies binary numeric promotion to two known operand types.
func promote(x, y string) string {
	rx, ry := numericRank[x], numericRank[y]
	if rx == 0 || ry == 0 {
		return ""
	}
	if rx >= ry {
		return x
	}
	return y
}

func literalType(l *ast.Literal) string {
	switch l.Kind {
	case ast.LitInt:
		switch strings.ToLower(strings.TrimLeft(l.Value, "0123456789_xXabcdefABCDEF")) {
		case "":
			return "int"
		case "l":
			return "long"
		}
	case ast.LitFloat:
		if l.Value == "" {
			return ""
		}
		switch l.Value[len(l.Value)-1] {
		case 'f', 'F':
			return "float"
		case 'm', 'M':
			return "decimal"
		}
		return "double"
	case ast.LitBool:
		return "bool"
	case ast.LitString:
		return "string"
	case ast.LitChar:
		return "char"
	}
	return ""
}

// convert returns e as a value of type to. Values already of that type are
// returned unchanged, int literals headed for float or double gain a suffix
// and everything else gets an explicit cast.
func convert(env typeEnv, e ast.Expr, to *ast.TypeName) ast.Expr {
	if to == nil || env.staticType(e) == to.String() {
		return e
	}
	if l, ok := e.(*ast.Literal); ok && l.Kind == ast.LitInt && strings.Trim(l.Value, "0123456789") == "" {
		switch to.String() {
		case "float":
			return &ast.Literal{Span: l.Span, Kind: ast.LitFloat, Value: l.Value + "f"}
		case "double":
			return &ast.Literal{Span: l.Span, Kind: ast.LitFloat, Value: l.Value + "d"}
		}
	}
	return &ast.CastExpr{Span: e.GetSpan(), Type: to, X: e}
}
