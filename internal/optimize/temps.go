package optimize

import (
	"strconv"

	"github.com/orizon-lang/astopt/internal/ast"
)

// tempNamer hands out fresh names of the form prefix+N that collide with
// nothing already used in a method.
type tempNamer struct {
	prefix string
	used   map[string]bool
	next   int
}

func newTempNamer(prefix string, scope ast.Stmt) *tempNamer {
	used := make(map[string]bool)
	for _, name := range ast.Idents(scope) {
		used[name] = true
	}
	for name := range ast.DeclaredLocals(scope) {
		used[name] = true
	}
	return &tempNamer{prefix: prefix, used: used}
}

func (t *tempNamer) fresh() string {
	for {
		name := t.prefix + strconv.Itoa(t.next)
		t.next++
		if !t.used[name] {
			t.used[name] = true
			return name
		}
	}
}

// tempDecl declares name initialized with init, typed when the type is known.
func tempDecl(name string, init ast.Expr) *ast.LocalDecl {
	return &ast.LocalDecl{
		Span: init.GetSpan(),
		Type: ast.Type(resultType(init)),
		Name: name,
		Init: init,
	}
}

// replaceNodes returns a mapper substituting every node in targets by an
// identifier, keyed by node identity.
func replaceNodes(targets map[ast.Expr]string) ast.ExprMapper {
	return func(e ast.Expr) (ast.Expr, bool) {
		if name, ok := targets[e]; ok {
			return &ast.Ident{Span: e.GetSpan(), Name: name}, true
		}
		return nil, false
	}
}
