package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/position"
)

const testFile = "Assets/Scripts/Player.cs"

// playerFile wraps members in `public class Player`.
func playerFile(members ...ast.Member) *ast.File {
	return ast.NewFileBuilder(position.Span{}).Using("UnityEngine").Class("Player", members...).Build()
}

// updateFile wraps statements in `void Update()` with the given parameters.
func updateFile(params []*ast.Param, body ...ast.Stmt) *ast.File {
	return playerFile(ast.Method(ast.ModPrivate, "void", "Update", params, body...))
}

// runPass applies p once with a fresh context and returns the resulting
// file, which is the input when p reports no change.
func runPass(t *testing.T, p Pass, file *ast.File) (*ast.File, *Context) {
	t.Helper()
	ctx := NewContext()
	ctx.SetCurrentFile(testFile)
	out, err := p.Transform(file, ctx)
	require.NoError(t, err)
	if out == nil {
		out = file
	}
	return out, ctx
}

// methodBody returns the body of the named method in the first type.
func methodBody(t *testing.T, file *ast.File, name string) *ast.Block {
	t.Helper()
	for _, m := range file.Types[0].Members {
		if md, ok := m.(*ast.MethodDecl); ok && md.Name == name {
			require.NotNil(t, md.Body, "method %s has no block body", name)
			return md.Body
		}
	}
	require.FailNow(t, "method not found", name)
	return nil
}

func stmtStrings(b *ast.Block) []string {
	out := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		out[i] = s.String()
	}
	return out
}

func countNodes[T ast.Node](n ast.Node) int {
	count := 0
	ast.Inspect(n, func(x ast.Node) bool {
		if _, ok := x.(T); ok {
			count++
		}
		return true
	})
	return count
}
