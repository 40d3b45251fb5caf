package optimize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
)

func sqrt(x ast.Expr) *ast.CallExpr {
	return ast.Call(ast.Path("Mathf", "Sqrt"), x)
}

func TestHoistInvariantCall(t *testing.T) {
	loop := ast.For("i", 0, "<", 10, ast.Blk(
		ast.ExprS(ast.Assign(ast.Index(ast.Id("x"), ast.Id("i")), "=", sqrt(ast.Id("speed")))),
		ast.ExprS(ast.Call(ast.Path("Debug", "Log"), sqrt(ast.Id("speed")))),
	))
	file := updateFile(ast.Params("float", "speed"), loop)

	out, ctx := runPass(t, &invariantHoister{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 2)
	assert.Equal(t, "float __licm_0 = Mathf.Sqrt(speed);", body.Stmts[0].String())

	hoisted := body.Stmts[1].(*ast.ForStmt)
	rendered := hoisted.String()
	assert.NotContains(t, rendered, "Mathf.Sqrt")
	assert.Equal(t, 2, strings.Count(rendered, "__licm_0"))

	entries := ctx.EntriesForPass(PassLICM)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hoisted loop-invariant call Mathf.Sqrt(speed) into __licm_0", entries[0].Description)
}

func TestHoistNeverMovesInductionVariable(t *testing.T) {
	loop := ast.For("i", 0, "<", 10, ast.Blk(
		ast.ExprS(ast.Assign(ast.Index(ast.Id("x"), ast.Id("i")), "=", sqrt(ast.Id("i")))),
	))
	file := updateFile(nil, loop)

	out, ctx := runPass(t, &invariantHoister{}, file)

	assert.Same(t, loop, methodBody(t, out, "Update").Stmts[0])
	assert.Zero(t, ctx.Count())
}

func TestHoistSkipsVariablesWrittenInLoop(t *testing.T) {
	tests := []struct {
		name string
		body ast.Stmt
	}{
		{"assigned", ast.Blk(
			ast.ExprS(ast.Call(ast.Path("Debug", "Log"), sqrt(ast.Id("speed")))),
			ast.ExprS(ast.Assign(ast.Id("speed"), "*=", ast.Float("0.5f"))),
		)},
		{"declared inside", ast.Blk(
			ast.Var("float", "d", ast.Id("i")),
			ast.ExprS(ast.Call(ast.Path("Debug", "Log"), sqrt(ast.Id("d")))),
		)},
		{"field with self call", ast.Blk(
			ast.ExprS(ast.Call(ast.Path("Debug", "Log"), sqrt(ast.Id("radius")))),
			ast.ExprS(call("Grow")),
		)},
		{"conditional only", ast.Blk(
			ast.If(ast.Id("ready"), ast.ExprS(ast.Call(ast.Path("Debug", "Log"), sqrt(ast.Id("speed")))), nil),
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := ast.While(ast.Id("running"), tt.body)
			out, ctx := runPass(t, &invariantHoister{}, updateFile(ast.Params("float", "speed"), loop))
			assert.Same(t, loop, methodBody(t, out, "Update").Stmts[0])
			assert.Zero(t, ctx.Count())
		})
	}
}

func TestHoistFromLoopCondition(t *testing.T) {
	loop := ast.While(
		ast.Bin(ast.Id("t"), "<", ast.Call(ast.Path("Mathf", "Max"), ast.Id("a"), ast.Id("b"))),
		ast.Blk(ast.ExprS(ast.Assign(ast.Id("t"), "+=", ast.Path("Time", "deltaTime")))),
	)
	file := updateFile(ast.Params("float", "a", "float", "b"), loop)

	out, _ := runPass(t, &invariantHoister{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 2)
	assert.Equal(t, "var __licm_0 = Mathf.Max(a, b);", body.Stmts[0].String())
	assert.Equal(t, "t < __licm_0", body.Stmts[1].(*ast.WhileStmt).Cond.String())
}

func TestHoistAvoidsExistingNames(t *testing.T) {
	loop := ast.While(ast.Id("running"), ast.Blk(
		ast.ExprS(ast.Call(ast.Path("Debug", "Log"), sqrt(ast.Id("speed")))),
	))
	file := updateFile(ast.Params("float", "speed"),
		ast.Var("int", "__licm_0", ast.Int(1)),
		loop,
	)

	out, _ := runPass(t, &invariantHoister{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 3)
	assert.Equal(t, "float __licm_1 = Mathf.Sqrt(speed);", body.Stmts[1].String())
}

func absFirst() ast.Stmt {
	return ast.ExprS(ast.Assign(ast.Id("s"), "+=",
		ast.Call(ast.Path("Mathf", "Abs"), ast.Index(ast.Id("arr"), ast.Int(0)))))
}

func TestHoistKeepsThrowingOperandsInPlace(t *testing.T) {
	tests := []struct {
		name string
		loop ast.Stmt
	}{
		{"unknown trip count", &ast.ForStmt{
			Init: []ast.Stmt{ast.Var("int", "i", ast.Int(0))},
			Cond: ast.Bin(ast.Id("i"), "<", ast.Id("n")),
			Post: []ast.Expr{ast.Inc(ast.Id("i"))},
			Body: ast.Blk(absFirst()),
		}},
		{"while loop", ast.While(ast.Id("running"), ast.Blk(absFirst()))},
		{"zero iterations", ast.For("i", 0, "<", 0, ast.Blk(absFirst()))},
		{"behind a break", ast.For("i", 0, "<", 10, ast.Blk(
			ast.If(ast.Id("done"), &ast.BreakStmt{}, nil),
			absFirst(),
		))},
		{"buffer filled by callee", ast.For("i", 0, "<", 10, ast.Blk(
			absFirst(),
			ast.ExprS(ast.Call(ast.Path("Buffers", "Fill"), ast.Id("arr"))),
		))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ctx := runPass(t, &invariantHoister{}, updateFile(ast.Params("int", "n"), tt.loop))
			assert.Same(t, tt.loop, methodBody(t, out, "Update").Stmts[0])
			assert.Zero(t, ctx.Count())
		})
	}
}

func TestHoistThrowingOperandWhenLoopRuns(t *testing.T) {
	loop := ast.For("i", 0, "<", 10, ast.Blk(absFirst()))
	file := updateFile(nil, loop)

	out, ctx := runPass(t, &invariantHoister{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 2)
	assert.Equal(t, "var __licm_0 = Mathf.Abs(arr[0]);", body.Stmts[0].String())
	assert.Equal(t, 1, ctx.Count())
}
