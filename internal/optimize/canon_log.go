package optimize

import "github.com/orizon-lang/astopt/internal/ast"

var formatLogMethods = map[string]string{
	"Log":        "LogFormat",
	"LogWarning": "LogWarningFormat",
	"LogError":   "LogErrorFormat",
}

// logFormatCanonicalizer rewrites Debug.Log(string.Format(f, a...)) into
// Debug.LogFormat(f, a...), keeping an optional context object first.
type logFormatCanonicalizer struct{}

func (p *logFormatCanonicalizer) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassLogging,
		Name:        "Logging canonicalization",
		Description: "Uses the formatting overloads of Debug.Log instead of string.Format",
		Enabled:     true,
		Priority:    5,
	}
}

func (p *logFormatCanonicalizer) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	var canon ast.ExprMapper
	canon = func(e ast.Expr) (ast.Expr, bool) {
		call, ok := e.(*ast.CallExpr)
		if !ok {
			return nil, false
		}
		sel, ok := call.Fun.(*ast.MemberExpr)
		if !ok || !isIdent(sel.X, "Debug") {
			return nil, false
		}
		formatName, ok := formatLogMethods[sel.Name]
		if !ok || len(call.Args) < 1 || len(call.Args) > 2 {
			return nil, false
		}
		format, ok := stringFormatCall(call.Args[0].Value)
		if !ok || call.Args[0].Mode != ast.ModeValue {
			return nil, false
		}

		// string.Format arguments may hold further log calls.
		fargs := make([]*ast.Arg, len(format.Args))
		for i, a := range format.Args {
			c := *a
			c.Value = ast.MapExpr(a.Value, canon)
			fargs[i] = &c
		}

		var args []*ast.Arg
		if len(call.Args) == 2 {
			c := *call.Args[1]
			c.Value = ast.MapExpr(c.Value, canon)
			args = append(args, &c)
		}
		args = append(args, fargs...)

		out := &ast.CallExpr{
			Span: call.Span,
			Fun:  &ast.MemberExpr{Span: sel.Span, X: sel.X, Name: formatName},
			Args: args,
		}
		ctx.Record(PassLogging, "Replaced Debug."+sel.Name+"(string.Format(...)) with Debug."+formatName,
			call.Span, call.String(), out.String())
		return out, true
	}
	return ast.MapFileExprs(file, canon), nil
}

// stringFormatCall matches string.Format or String.Format with a format
// and at least one argument. With three or more arguments the first may be
// an IFormatProvider, so it must be a string literal.
func stringFormatCall(e ast.Expr) (*ast.CallExpr, bool) {
	call, ok := ast.Unparen(e).(*ast.CallExpr)
	if !ok || len(call.Args) < 2 {
		return nil, false
	}
	sel, ok := call.Fun.(*ast.MemberExpr)
	if !ok || sel.Name != "Format" {
		return nil, false
	}
	if !isIdent(sel.X, "string") && !isIdent(sel.X, "String") {
		return nil, false
	}
	for _, a := range call.Args {
		if a.Mode != ast.ModeValue {
			return nil, false
		}
	}
	if len(call.Args) >= 3 && !isStringExpr(call.Args[0].Value) {
		return nil, false
	}
	return call, true
}

func isStringExpr(e ast.Expr) bool {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal:
		return n.Kind == ast.LitString
	case *ast.InterpolatedString:
		return true
	}
	return false
}
