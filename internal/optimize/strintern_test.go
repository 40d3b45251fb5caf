package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
)

func TestUniqueConstName(t *testing.T) {
	used := map[string]bool{}
	tests := []struct {
		content string
		want    string
	}{
		{"Player", "STR_PLAYER"},
		{"game over!", "STR_GAME_OVER"},
		{"  --Enemy tag--", "STR_ENEMY_TAG"},
		{"!!!", "STR_LITERAL"},
		{"Player!", "STR_PLAYER_2"},
		{"élan", "STR_LAN"},
		{"a very long string literal that keeps on going", "STR_A_VERY_LONG_STRING_LITERAL_THAT"},
	}
	for _, tt := range tests {
		got := uniqueConstName(tt.content, used)
		used[got] = true
		assert.Equal(t, tt.want, got, tt.content)
	}
}

func TestStringInternerCountsAcrossFiles(t *testing.T) {
	ctx := NewContext()
	p := &stringInterner{}

	first := updateFile(nil,
		logS(ast.Str("Player")),
		logS(ast.Str("ok")),
		logS(&ast.InterpolatedString{Parts: []ast.Expr{ast.Str("Player"), ast.Id("hp")}}),
	)
	second := updateFile(nil,
		logS(ast.Str("Player")),
		logS(&ast.InterpolatedString{Parts: []ast.Expr{
			ast.Str("hp: "),
			ast.Call(ast.Path("Format"), ast.Str("Player")),
		}}),
	)

	ctx.SetCurrentFile("A.cs")
	out, err := p.Transform(first, ctx)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Zero(t, ctx.Count())

	ctx.SetCurrentFile("B.cs")
	_, err = p.Transform(second, ctx)
	require.NoError(t, err)

	table := ctx.StringLiterals()
	require.Len(t, table, 1)
	assert.Equal(t, StringLiteralInfo{Content: "Player", Name: "STR_PLAYER", Count: 3, FirstFile: "A.cs"}, table[0])

	entries := ctx.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, PassStrings, entries[0].PassID)
	assert.Equal(t, "B.cs", entries[0].File)
	assert.Contains(t, entries[0].Description, "STR_PLAYER")
}
