package astjson

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/errors"
	"github.com/orizon-lang/astopt/internal/position"
)

func span(line, col, endCol int) position.Span {
	return position.Span{
		Start: position.Position{Filename: "Player.cs", Line: line, Column: col, Offset: 10},
		End:   position.Position{Filename: "Player.cs", Line: line, Column: endCol, Offset: 20},
	}
}

// playerUnit exercises every node kind at least once.
func playerUnit() ast.Unit {
	update := ast.Method(ast.ModPrivate, "void", "Update", ast.Params("float", "dt"),
		ast.Var("", "speed", ast.Bin(ast.Path("this", "speed"), "*", ast.Id("dt"))),
		&ast.LocalDecl{Span: span(4, 9, 30), Type: ast.Type("int"), Name: "n"},
		ast.If(ast.Not(ast.Paren(ast.Id("alive"))), ast.Ret(nil), ast.ExprS(ast.Inc(ast.Id("n")))),
		ast.While(ast.Bin(ast.Id("n"), "<", ast.Int(3)), ast.Blk(&ast.BreakStmt{}, &ast.ContinueStmt{})),
		ast.For("i", 0, "<", 3, ast.ExprS(ast.Assign(ast.Index(ast.Id("xs"), ast.Id("i")), "=", ast.Id("i")))),
		ast.ForEach("e", ast.Id("enemies"), ast.ExprS(ast.Call(ast.Sel(ast.Id("e"), "Hit"),
			&ast.CastExpr{Type: ast.Type("int"), X: ast.Float("2.5f")}))),
		&ast.SwitchStmt{Tag: ast.Id("n"), Sections: []*ast.SwitchSection{
			{Labels: []ast.Expr{ast.Int(1), ast.Int(2)}, Body: []ast.Stmt{&ast.BreakStmt{}}},
			{Default: true, Body: []ast.Stmt{&ast.ThrowStmt{X: ast.New("System.Exception", ast.Str("bad"))}}},
		}},
		&ast.LabeledStmt{Label: "done", Stmt: &ast.EmptyStmt{}},
		&ast.GotoStmt{Label: "done"},
		ast.ExprS(ast.Call(ast.Path("Debug", "Log"), &ast.InterpolatedString{
			Parts: []ast.Expr{ast.Str("hp "), ast.Id("hp")},
		})),
		ast.ExprS(&ast.CallExpr{Fun: ast.Id("TryGet"), Args: []*ast.Arg{{Mode: ast.ModeOut, Value: ast.Id("x")}}}),
		ast.ExprS(ast.Assign(ast.Id("y"), "=", ast.Cond(ast.Bool(true), ast.Null(), ast.Id("y")))),
		ast.Ret(nil),
	)
	update.Span = span(3, 5, 40)

	file := &ast.File{
		Span:   span(1, 1, 80),
		Usings: []string{"UnityEngine", "System"},
		Types: []*ast.TypeDecl{{
			Modifiers: ast.ModPublic | ast.ModSealed,
			Kind:      ast.KindClass,
			Name:      "Player",
			Bases:     []string{"MonoBehaviour"},
			Members: []ast.Member{
				&ast.FieldDecl{Modifiers: ast.ModPrivate, Type: ast.Type("float"), Name: "speed", Init: ast.Float("1.5f")},
				&ast.PropertyDecl{Modifiers: ast.ModPublic, Type: ast.Type("int"), Name: "Hp",
					Getter: &ast.Accessor{Kind: ast.AccessorGet, ExprBody: ast.Id("hp")},
					Setter: &ast.Accessor{Kind: ast.AccessorSet}},
				ast.ExprMethod(ast.ModPrivate, "float", "Half", nil, ast.Bin(ast.Id("speed"), "*", ast.Float("0.5f"))),
				update,
			},
		}, {
			Kind: ast.KindStruct,
			Name: "Hit",
			Members: []ast.Member{
				&ast.MethodDecl{Modifiers: ast.ModPublic, ReturnType: ast.Type("void"), Name: "Apply",
					Params: []*ast.Param{{Mode: ast.ModeRef, Type: ast.Type("int"), Name: "hp"}},
					Body:   ast.Blk()},
			},
		}},
	}
	return ast.Unit{Path: "Assets/Scripts/Player.cs", File: file}
}

func TestRoundTrip(t *testing.T) {
	in := playerUnit()

	data, err := Marshal(in)
	require.NoError(t, err)

	out, err := Unmarshal("Player.cs.ast.json", data)
	require.NoError(t, err)

	assert.Equal(t, in.Path, out.Path)
	assert.Equal(t, in.File.String(), out.File.String())
	assert.Equal(t, in.File.Span, out.File.Span)

	update := out.File.Types[0].Members[3].(*ast.MethodDecl)
	assert.Equal(t, span(3, 5, 40), update.Span)
	assert.Equal(t, span(4, 9, 30), update.Body.Stmts[1].GetSpan())
	assert.Equal(t, position.Span{}, update.Body.Stmts[0].GetSpan())
	assert.Equal(t, ast.KindStruct, out.File.Types[1].Kind)

	again, err := Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"path": `},
		{"unknown field", `{"path": "a.cs", "file": {"types": []}, "extra": 1}`},
		{"no path", `{"file": {"types": []}}`},
		{"no file", `{"path": "a.cs"}`},
		{"bad modifier", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "modifiers": ["magic"]}]}}`},
		{"unknown member", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "members": [{"kind": "Event"}]}]}}`},
		{"unknown statement", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "members": [
			{"kind": "Method", "name": "M", "type": "void", "body": {"kind": "Block", "stmts": [{"kind": "Yield"}]}}]}]}}`},
		{"missing operand", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "members": [
			{"kind": "Field", "name": "f", "type": "int", "init": {"kind": "Binary", "op": "+", "x": {"kind": "Ident", "name": "a"}}}]}]}}`},
		{"bad literal", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "members": [
			{"kind": "Field", "name": "f", "type": "int", "init": {"kind": "Literal", "literal": "decimal", "value": "1"}}]}]}}`},
		{"non-block body", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "members": [
			{"kind": "Method", "name": "M", "type": "void", "body": {"kind": "Empty"}}]}]}}`},
		{"bad mode", `{"path": "a.cs", "file": {"types": [{"kind": "Type", "name": "A", "members": [
			{"kind": "Method", "name": "M", "type": "void", "params": [{"kind": "Param", "type": "int", "name": "x", "mode": "params"}]}]}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal("input.ast.json", []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryInput), err.Error())
		})
	}
}

func TestMarshalWithoutFile(t *testing.T) {
	_, err := Marshal(ast.Unit{Path: "empty.cs"})
	assert.Error(t, err)
}

func TestReadAndWriteDir(t *testing.T) {
	unit := playerUnit()
	data, err := Marshal(unit)
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"b/Player.cs.ast.json": {Data: data},
		"a/Enemy.cs.ast.json":  {Data: []byte(`{"path": "Enemy.cs", "file": {"types": [{"kind": "Type", "name": "Enemy"}]}}`)},
		"notes.txt":            {Data: []byte("ignored")},
	}
	units, err := ReadDir(fsys)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "Enemy.cs", units[0].Path)
	assert.Equal(t, unit.Path, units[1].Path)

	dir := t.TempDir()
	require.NoError(t, WriteDir(dir, units))
	written, err := os.ReadFile(filepath.Join(dir, "Assets", "Scripts", "Player.cs.ast.json"))
	require.NoError(t, err)
	back, err := Unmarshal("written", written)
	require.NoError(t, err)
	assert.Equal(t, unit.File.String(), back.File.String())

	fsys["c/Broken.cs.ast.json"] = &fstest.MapFile{Data: []byte("{")}
	_, err = ReadDir(fsys)
	assert.True(t, errors.HasCategory(err, errors.CategoryInput))
}
