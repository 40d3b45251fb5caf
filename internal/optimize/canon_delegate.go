package optimize

import "github.com/orizon-lang/astopt/internal/ast"

var delegateTypes = map[string]bool{
	"Action":        true,
	"UnityAction":   true,
	"EventHandler":  true,
	"EventCallback": true,
}

// delegateCanonicalizer turns `new Action(Handler)` into the method group
// `Handler` where the delegate type is fixed by the surrounding code.
type delegateCanonicalizer struct{}

func (p *delegateCanonicalizer) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassDelegate,
		Name:        "Delegate construction canonicalization",
		Description: "Replaces explicit delegate construction with method group conversion",
		Enabled:     true,
		Priority:    1,
	}
}

func (p *delegateCanonicalizer) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	var canon ast.ExprMapper
	canon = func(e ast.Expr) (ast.Expr, bool) {
		switch n := e.(type) {
		case *ast.AssignExpr:
			if n.Op != "+=" && n.Op != "-=" {
				return nil, false
			}
			group, ok := methodGroup(n.Value)
			if !ok {
				return nil, false
			}
			c := *n
			c.Target = ast.MapExpr(n.Target, canon)
			c.Value = group
			ctx.Record(PassDelegate, "Replaced delegate construction with method group",
				n.Value.GetSpan(), n.Value.String(), group.String())
			return &c, true
		case *ast.CallExpr:
			sel, ok := n.Fun.(*ast.MemberExpr)
			if !ok || (sel.Name != "AddListener" && sel.Name != "RemoveListener") || len(n.Args) != 1 {
				return nil, false
			}
			group, ok := methodGroup(n.Args[0].Value)
			if !ok || n.Args[0].Mode != ast.ModeValue {
				return nil, false
			}
			c := *n
			c.Fun = ast.MapExpr(n.Fun, canon)
			arg := *n.Args[0]
			arg.Value = group
			c.Args = []*ast.Arg{&arg}
			ctx.Record(PassDelegate, "Replaced delegate construction with method group",
				n.Args[0].Value.GetSpan(), n.Args[0].Value.String(), group.String())
			return &c, true
		}
		return nil, false
	}
	return ast.MapFileExprs(file, canon), nil
}

// methodGroup unwraps `new D(group)` for a known delegate type D whose only
// argument is an identifier or member chain.
func methodGroup(e ast.Expr) (ast.Expr, bool) {
	n, ok := ast.Unparen(e).(*ast.NewExpr)
	if !ok || !delegateTypes[n.Type.String()] || len(n.Args) != 1 || n.Args[0].Mode != ast.ModeValue {
		return nil, false
	}
	group := ast.Unparen(n.Args[0].Value)
	if !isSimpleChain(group) {
		return nil, false
	}
	if _, this := group.(*ast.ThisExpr); this {
		return nil, false
	}
	return group, true
}
