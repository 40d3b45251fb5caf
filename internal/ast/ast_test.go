package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/position"
)

func TestExpressionRendering(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"member call", Call(Path("Mathf", "Sqrt"), Id("x")), "Mathf.Sqrt(x)"},
		{"left assoc", Bin(Bin(Id("a"), "-", Id("b")), "-", Id("c")), "a - b - c"},
		{"right operand grouped", Bin(Id("a"), "-", Bin(Id("b"), "-", Id("c"))), "a - (b - c)"},
		{"mul over add", Bin(Bin(Id("a"), "+", Id("b")), "*", Id("c")), "(a + b) * c"},
		{"explicit paren kept", Paren(Bin(Id("a"), "+", Id("b"))), "(a + b)"},
		{"negation of and", Not(Bin(Id("a"), "&&", Id("b"))), "!(a && b)"},
		{"ternary", Cond(Id("c"), Int(1), Int(2)), "c ? 1 : 2"},
		{"member of sum", Sel(Bin(Id("a"), "+", Id("b")), "magnitude"), "(a + b).magnitude"},
		{"string literal", Str("a\"b"), `"a\"b"`},
		{"compound assign", Assign(Id("x"), "+=", Int(1)), "x += 1"},
		{"new", New("Vector3", Int(0), Int(1), Int(0)), "new Vector3(0, 1, 0)"},
		{"interpolation", &InterpolatedString{Parts: []Expr{Str("hp: "), Id("hp")}}, `$"hp: {hp}"`},
		{"double negation", &UnaryExpr{Op: "-", X: &UnaryExpr{Op: "-", X: Id("x")}}, "- -x"},
		{"postfix", Inc(Id("i")), "i++"},
		{"ref arg", &CallExpr{Fun: Id("Swap"), Args: []*Arg{{Mode: ModeRef, Value: Id("a")}}}, "Swap(ref a)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestStatementRendering(t *testing.T) {
	loop := For("i", 0, "<", 3, Blk(ExprS(Call(Id("Tick"), Id("i")))))
	assert.Equal(t, "for (int i = 0; i < 3; i++)\n{\n    Tick(i);\n}", loop.String())

	ifs := If(Id("ok"), Ret(Int(1)), Ret(Int(2)))
	assert.Equal(t, "if (ok)\n    return 1;\nelse\n    return 2;", ifs.String())

	assert.Equal(t, "var t = a;", Var("", "t", Id("a")).String())
}

func TestFileRendering(t *testing.T) {
	file := NewFileBuilder(position.Span{}).
		Using("UnityEngine").
		Class("Player", ExprMethod(ModPrivate, "float", "Half", Params("float", "v"), Bin(Id("v"), "*", Float("0.5f")))).
		Build()

	want := "using UnityEngine;\n\npublic class Player\n{\n    private float Half(float v) => v * 0.5f;\n}\n"
	assert.Equal(t, want, file.String())
}

func TestMapExprSharesUnchangedSubtrees(t *testing.T) {
	left := Call(Path("Mathf", "Abs"), Id("y"))
	expr := Bin(left, "+", Id("x"))

	out := MapExpr(expr, func(e Expr) (Expr, bool) {
		if id, ok := e.(*Ident); ok && id.Name == "x" {
			return Int(7), true
		}
		return nil, false
	})

	require.NotSame(t, expr, out)
	bin := out.(*BinaryExpr)
	assert.Same(t, left, bin.X, "untouched subtree must be shared")
	assert.Equal(t, "Mathf.Abs(y) + 7", out.String())
	assert.Equal(t, "Mathf.Abs(y) + x", expr.String(), "input must not be mutated")

	same := MapExpr(expr, func(Expr) (Expr, bool) { return nil, false })
	assert.Same(t, expr, same)
}

func TestMapStmtExprsDeep(t *testing.T) {
	body := Blk(If(Id("c"), Blk(ExprS(Call(Id("F"), Id("x")))), nil))
	out := MapStmtExprs(body, func(e Expr) (Expr, bool) {
		if id, ok := e.(*Ident); ok && id.Name == "x" {
			return Id("y"), true
		}
		return nil, false
	})
	assert.Contains(t, out.String(), "F(y);")
	assert.Contains(t, body.String(), "F(x);")

	shallow := MapShallowExprs(body.Stmts[0], func(e Expr) (Expr, bool) {
		if id, ok := e.(*Ident); ok && id.Name == "x" {
			return Id("y"), true
		}
		return nil, false
	})
	assert.Same(t, body.Stmts[0], shallow)
}

func TestRewriteStmtListsVisitsSwitchSections(t *testing.T) {
	sw := &SwitchStmt{
		Tag: Id("k"),
		Sections: []*SwitchSection{
			{Labels: []Expr{Int(1)}, Body: []Stmt{&EmptyStmt{}, &BreakStmt{}}},
		},
	}
	body := Blk(sw, &EmptyStmt{})

	calls := 0
	out := RewriteStmtLists(body, func(list []Stmt) ([]Stmt, bool) {
		calls++
		var kept []Stmt
		for _, s := range list {
			if _, ok := s.(*EmptyStmt); !ok {
				kept = append(kept, s)
			}
		}
		return kept, len(kept) != len(list)
	}).(*Block)

	assert.Equal(t, 2, calls)
	require.Len(t, out.Stmts, 1)
	assert.Len(t, out.Stmts[0].(*SwitchStmt).Sections[0].Body, 1)
	assert.Len(t, sw.Sections[0].Body, 2)
}

func TestRewriteBodiesKeepsIdentityWhenUnchanged(t *testing.T) {
	file := NewFileBuilder(position.Span{}).
		Class("A", Method(ModPublic, "void", "Update", nil, ExprS(Call(Id("Tick"))))).
		Build()

	out := RewriteBodies(file, func(_ *TypeDecl, _ Member, body *Block) *Block { return body })
	assert.Same(t, file, out)

	out = RewriteBodies(file, func(_ *TypeDecl, _ Member, body *Block) *Block { return Blk() })
	assert.NotSame(t, file, out)
	assert.Len(t, out.Types[0].Members[0].(*MethodDecl).Body.Stmts, 0)
	assert.Len(t, file.Types[0].Members[0].(*MethodDecl).Body.Stmts, 1)
}

func TestEqualIgnoresSpansAndParens(t *testing.T) {
	a := Call(Path("Mathf", "Sqrt"), Id("x"))
	b := Call(Path("Mathf", "Sqrt"), Paren(&Ident{Span: position.Line("a.cs", 4), Name: "x"}))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, Call(Path("Mathf", "Sqrt"), Id("y"))))
	assert.False(t, Equal(Int(1), Float("1")))
}

func TestRoot(t *testing.T) {
	tests := []struct {
		expr Expr
		root string
		ok   bool
	}{
		{Path("transform", "position", "x"), "transform", true},
		{Sel(This(), "speed"), "speed", true},
		{Index(Id("items"), Id("i")), "items", true},
		{Sel(Call(Id("GetTarget")), "position"), "", false},
	}
	for _, tt := range tests {
		root, ok := Root(tt.expr)
		assert.Equal(t, tt.ok, ok, tt.expr.String())
		assert.Equal(t, tt.root, root, tt.expr.String())
	}
}

func TestDeclaredLocalsAndIdents(t *testing.T) {
	body := Blk(
		Var("float", "d", Call(Path("Vector3", "Distance"), Id("a"), Id("b"))),
		ForEach("e", Id("enemies"), Blk(ExprS(Call(Sel(Id("e"), "Hit"), Id("d"))))),
	)

	locals := DeclaredLocals(body)
	assert.Equal(t, map[string]bool{"d": true, "e": true}, locals)
	assert.Equal(t, []string{"Vector3", "a", "b", "enemies", "e", "d"}, Idents(body))
}
