package host

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/errors"
	"github.com/orizon-lang/astopt/internal/optimize"
	"github.com/orizon-lang/astopt/internal/position"
)

func TestRegisterOnce(t *testing.T) {
	r := NewRegistry()
	noop := func(u []ast.Unit) []ast.Unit { return u }

	require.NoError(t, r.Register("first", noop))
	err := r.Register("first", noop)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryHost))
	assert.Equal(t, []string{"first"}, r.Names())
}

func TestInvokeChainsHooks(t *testing.T) {
	r := NewRegistry()
	var order []string
	tag := func(name string) PreCompileHook {
		return func(units []ast.Unit) []ast.Unit {
			order = append(order, name)
			return append(units, ast.Unit{Path: name + ".cs"})
		}
	}
	require.NoError(t, r.Register("a", tag("a")))
	require.NoError(t, r.Register("b", tag("b")))

	out := r.Invoke(nil)

	assert.Equal(t, []string{"a", "b"}, order)
	require.Len(t, out, 2)
	assert.Equal(t, "b.cs", out[1].Path)
}

func TestRegisterPipeline(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	p := optimize.NewPipeline(optimize.DefaultPasses(), optimize.WithLogger(logger))
	r := NewRegistry()
	require.NoError(t, r.RegisterPipeline(p))
	require.Error(t, r.RegisterPipeline(p))

	file := ast.NewFileBuilder(position.Span{}).Class("Player",
		ast.Method(ast.ModPrivate, "void", "Update", nil,
			ast.If(ast.Bool(false), ast.Blk(ast.ExprS(ast.Call(ast.Id("Jump")))), nil),
			ast.ExprS(ast.Call(ast.Id("Move"))),
		),
	).Build()

	out := r.Invoke([]ast.Unit{{Path: "Player.cs", File: file}})

	body := out[0].File.Types[0].Members[0].(*ast.MethodDecl).Body
	require.Len(t, body.Stmts, 1)
	assert.Equal(t, "Move();", body.Stmts[0].String())
	assert.Len(t, p.Context().EntriesForPass(optimize.PassConstFold), 1)
}
