package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
)

func TestDeadCodeAfterReturn(t *testing.T) {
	file := updateFile(nil,
		ast.ExprS(call("A")),
		ast.Ret(nil),
		ast.ExprS(call("B")),
		ast.ExprS(call("C")),
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	assert.Equal(t, []string{"A();", "return;"}, stmtStrings(methodBody(t, out, "Update")))
	entries := ctx.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Removed 2 unreachable statements after return", entries[0].Description)
	assert.Equal(t, "B(); C();", entries[0].Before)
}

func TestDeadCodeAfterTerminatingIf(t *testing.T) {
	file := updateFile(nil,
		ast.If(ast.Id("ready"),
			ast.Blk(ast.Ret(nil)),
			ast.Blk(&ast.ThrowStmt{X: ast.New("InvalidOperationException")})),
		ast.ExprS(call("A")),
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 1)
	assert.IsType(t, &ast.IfStmt{}, body.Stmts[0])
	assert.Equal(t, "Removed unreachable statement after terminating if", ctx.Entries()[0].Description)
}

func TestDeadCodeKeepsCodeAfterPartialIf(t *testing.T) {
	file := updateFile(nil,
		ast.If(ast.Id("ready"), ast.Blk(ast.Ret(nil)), nil),
		ast.ExprS(call("A")),
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	assert.Len(t, methodBody(t, out, "Update").Stmts, 2)
	assert.Zero(t, ctx.Count())
}

func TestDeadCodeStopsAtLabel(t *testing.T) {
	file := updateFile(nil,
		&ast.GotoStmt{Label: "done"},
		ast.ExprS(call("A")),
		&ast.LabeledStmt{Label: "done", Stmt: ast.ExprS(call("B"))},
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	body := methodBody(t, out, "Update")
	require.Len(t, body.Stmts, 2)
	assert.Equal(t, "goto done;", body.Stmts[0].String())
	assert.IsType(t, &ast.LabeledStmt{}, body.Stmts[1])
	assert.Equal(t, "Removed unreachable statement after goto", ctx.Entries()[0].Description)
}

func TestDeadCodeKeepsDeclarationUsedAfterLabel(t *testing.T) {
	file := updateFile(nil,
		&ast.GotoStmt{Label: "done"},
		ast.Var("int", "n", nil),
		&ast.LabeledStmt{Label: "done", Stmt: ast.ExprS(ast.Assign(ast.Id("n"), "=", ast.Int(1)))},
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	assert.Len(t, methodBody(t, out, "Update").Stmts, 3)
	assert.Zero(t, ctx.Count())
}

func TestDeadCodeInLoopAndSwitch(t *testing.T) {
	file := updateFile(nil,
		ast.While(ast.Id("running"), ast.Blk(
			&ast.BreakStmt{},
			ast.ExprS(call("A")),
		)),
		&ast.SwitchStmt{
			Tag: ast.Id("state"),
			Sections: []*ast.SwitchSection{{
				Labels: []ast.Expr{ast.Int(1)},
				Body:   []ast.Stmt{&ast.BreakStmt{}, ast.ExprS(call("B"))},
			}},
		},
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	body := methodBody(t, out, "Update")
	loop := body.Stmts[0].(*ast.WhileStmt)
	assert.Equal(t, []string{"break;"}, stmtStrings(loop.Body.(*ast.Block)))
	sw := body.Stmts[1].(*ast.SwitchStmt)
	assert.Len(t, sw.Sections[0].Body, 1)
	assert.Equal(t, 2, ctx.Count())
}

func TestDeadCodeDropsEmptyStatements(t *testing.T) {
	file := updateFile(nil,
		&ast.EmptyStmt{},
		ast.Blk(),
		ast.ExprS(call("A")),
	)

	out, ctx := runPass(t, &deadCodeEliminator{}, file)

	assert.Equal(t, []string{"A();"}, stmtStrings(methodBody(t, out, "Update")))
	assert.Equal(t, 2, ctx.CountsByPass()[PassDeadCode])
}
