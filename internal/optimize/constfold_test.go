package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
)

func call(name string, args ...ast.Expr) *ast.CallExpr {
	return ast.Call(ast.Id(name), args...)
}

func TestEvalCondition(t *testing.T) {
	sideEffect := call("Check")
	tests := []struct {
		name string
		expr ast.Expr
		want truth
	}{
		{"true literal", ast.Bool(true), alwaysTrue},
		{"negated false", ast.Not(ast.Bool(false)), alwaysTrue},
		{"false and unknown", ast.Bin(ast.Bool(false), "&&", sideEffect), alwaysFalse},
		{"true or unknown", ast.Bin(ast.Bool(true), "||", sideEffect), alwaysTrue},
		{"true and unknown", ast.Bin(ast.Bool(true), "&&", ast.Id("ready")), unknown},
		{"read and false", ast.Bin(ast.Id("ready"), "&&", ast.Bool(false)), unknown},
		{"member read or true", ast.Bin(ast.Path("obj", "ready"), "||", ast.Bool(true)), unknown},
		{"call and false", ast.Bin(sideEffect, "&&", ast.Bool(false)), unknown},
		{"numeric less", ast.Bin(ast.Int(2), "<", ast.Int(3)), alwaysTrue},
		{"float compare", ast.Bin(ast.Float("1.5f"), ">=", ast.Float("2.0f")), alwaysFalse},
		{"negative literal", ast.Bin(&ast.UnaryExpr{Op: "-", X: ast.Int(1)}, "<", ast.Int(0)), alwaysTrue},
		{"variable operand", ast.Bin(ast.Id("speed"), ">", ast.Int(3)), unknown},
		{"bool equality", ast.Bin(ast.Bool(true), "==", ast.Bool(false)), alwaysFalse},
		{"parenthesized", ast.Paren(ast.Bool(false)), alwaysFalse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalCondition(tt.expr))
		})
	}
}

func TestConstantFolderIfTrue(t *testing.T) {
	file := updateFile(nil,
		ast.If(ast.Bool(true), ast.Blk(ast.ExprS(call("A"))), ast.Blk(ast.ExprS(call("B")))),
	)

	out, ctx := runPass(t, &constantFolder{}, file)

	assert.Equal(t, []string{"A();"}, stmtStrings(methodBody(t, out, "Update")))
	entries := ctx.EntriesForPass(PassConstFold)
	require.Len(t, entries, 1)
	assert.Equal(t, "Removed always-true if condition", entries[0].Description)
	assert.Equal(t, testFile, entries[0].File)
}

func TestConstantFolderIfFalse(t *testing.T) {
	t.Run("without else", func(t *testing.T) {
		file := updateFile(nil, ast.If(ast.Bool(false), ast.Blk(ast.ExprS(call("A"))), nil))
		out, ctx := runPass(t, &constantFolder{}, file)

		body := methodBody(t, out, "Update")
		require.Len(t, body.Stmts, 1)
		assert.IsType(t, &ast.EmptyStmt{}, body.Stmts[0])
		assert.Equal(t, 1, ctx.Count())
	})

	t.Run("with else", func(t *testing.T) {
		file := updateFile(nil,
			ast.If(ast.Bin(ast.Int(1), ">", ast.Int(2)), ast.ExprS(call("A")), ast.Blk(ast.ExprS(call("B")))),
		)
		out, _ := runPass(t, &constantFolder{}, file)
		assert.Equal(t, []string{"B();"}, stmtStrings(methodBody(t, out, "Update")))
	})

	t.Run("else declaring a local keeps its block", func(t *testing.T) {
		file := updateFile(nil,
			ast.If(ast.Bool(false), ast.ExprS(call("A")), ast.Blk(ast.Var("int", "n", ast.Int(1)))),
		)
		out, _ := runPass(t, &constantFolder{}, file)
		body := methodBody(t, out, "Update")
		require.Len(t, body.Stmts, 1)
		assert.IsType(t, &ast.Block{}, body.Stmts[0])
	})
}

func TestConstantFolderWhileFalse(t *testing.T) {
	file := updateFile(nil, ast.While(ast.Bool(false), ast.Blk(ast.ExprS(call("A")))))

	out, ctx := runPass(t, &constantFolder{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 1)
	assert.IsType(t, &ast.EmptyStmt{}, body.Stmts[0])
	assert.Equal(t, "Removed loop that never runs", ctx.Entries()[0].Description)
}

func TestConstantFolderTernary(t *testing.T) {
	file := updateFile(nil,
		ast.Var("", "x", ast.Cond(ast.Bool(true), ast.Cond(ast.Bool(false), ast.Int(1), ast.Int(2)), ast.Int(3))),
	)

	out, ctx := runPass(t, &constantFolder{}, file)

	assert.Equal(t, []string{"var x = 2;"}, stmtStrings(methodBody(t, out, "Update")))
	assert.Equal(t, 2, ctx.Count())
}

func TestConstantFolderLeavesUnknownConditions(t *testing.T) {
	file := updateFile(ast.Params("float", "speed"),
		ast.If(ast.Bin(ast.Id("speed"), ">", ast.Int(3)), ast.ExprS(call("A")), nil),
		ast.If(ast.Bin(call("Check"), "&&", ast.Bool(false)), ast.ExprS(call("B")), nil),
		ast.While(ast.Id("running"), ast.ExprS(call("C"))),
	)

	out, ctx := runPass(t, &constantFolder{}, file)

	assert.Same(t, methodBody(t, file, "Update"), methodBody(t, out, "Update"))
	assert.Zero(t, ctx.Count())
}

func TestConstantFolderKeepsLeftOperandReads(t *testing.T) {
	cond := ast.If(ast.Bin(ast.Path("obj", "ready"), "&&", ast.Bool(false)), ast.Blk(ast.ExprS(call("A"))), nil)
	file := updateFile(nil, cond)

	out, ctx := runPass(t, &constantFolder{}, file)

	assert.Same(t, cond, methodBody(t, out, "Update").Stmts[0])
	assert.Zero(t, ctx.Count())
}

func TestConstantFolderKeepsGotoTargets(t *testing.T) {
	tests := []struct {
		name string
		stmt ast.Stmt
	}{
		{"false branch", ast.If(ast.Bool(false),
			ast.Blk(&ast.LabeledStmt{Label: "retry", Stmt: ast.ExprS(call("A"))}), nil)},
		{"dropped else", ast.If(ast.Bool(true), ast.ExprS(call("A")),
			ast.Blk(&ast.LabeledStmt{Label: "retry", Stmt: ast.ExprS(call("B"))}))},
		{"never-running loop", ast.While(ast.Bool(false),
			ast.Blk(&ast.LabeledStmt{Label: "retry", Stmt: ast.ExprS(call("A"))}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := updateFile(nil, tt.stmt, &ast.GotoStmt{Label: "retry"})

			out, ctx := runPass(t, &constantFolder{}, file)

			assert.Same(t, tt.stmt, methodBody(t, out, "Update").Stmts[0])
			assert.Zero(t, ctx.Count())
		})
	}
}
