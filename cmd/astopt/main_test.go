package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/astjson"
	"github.com/orizon-lang/astopt/internal/config"
	"github.com/orizon-lang/astopt/internal/optimize"
	"github.com/orizon-lang/astopt/internal/position"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{config.EnvEnabled, config.EnvDebug, config.EnvHostVersion, config.EnvLogFormat, config.EnvDisabledPasses} {
		t.Setenv(k, "")
	}
}

func writeUnits(t *testing.T) string {
	t.Helper()
	file := ast.NewFileBuilder(position.Span{}).Using("UnityEngine").Class("Player",
		ast.Method(ast.ModPrivate, "void", "Update", nil,
			ast.If(ast.Bool(false), ast.Blk(ast.ExprS(ast.Call(ast.Id("Jump")))), nil),
			ast.ExprS(ast.Call(ast.Path("Debug", "Log"), ast.Str("tick"))),
			ast.ExprS(ast.Call(ast.Path("Debug", "Log"), ast.Str("tick"))),
		),
	).Build()
	in := t.TempDir()
	require.NoError(t, astjson.WriteDir(in, []ast.Unit{{Path: "Scripts/Player.cs", File: file}}))
	return in
}

func TestRunWritesUnitsAndJSONReport(t *testing.T) {
	clearEnv(t)
	in := writeUnits(t)
	out := t.TempDir()
	report := filepath.Join(t.TempDir(), "report.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-in", in, "-out", out, "-json", "-report", report,
		"-config", filepath.Join(t.TempDir(), "none.json"),
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var sum summary
	require.NoError(t, json.Unmarshal(data, &sum))
	assert.True(t, sum.Enabled)
	assert.Equal(t, 1, sum.Units)
	assert.Contains(t, sum.Passes, passCount{Pass: optimize.PassConstFold, Changes: 1})
	require.Len(t, sum.Strings, 1)
	assert.Equal(t, "STR_TICK", sum.Strings[0].Name)
	assert.Equal(t, 2, sum.Strings[0].Count)

	units, err := astjson.ReadDir(os.DirFS(out))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.NotContains(t, units[0].File.String(), "Jump")
}

func TestRunDisabledByConfig(t *testing.T) {
	clearEnv(t)
	in := writeUnits(t)
	cfg := filepath.Join(t.TempDir(), "astopt.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"enabled": false}`), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-in", in, "-config", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "optimization disabled; 1 units passed through\n", stdout.String())
}

func TestRunArguments(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "USAGE:")

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "astopt v"))

	cfg := filepath.Join(t.TempDir(), "astopt.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"log_format": "xml"}`), 0o644))
	assert.Equal(t, 1, run([]string{"-in", t.TempDir(), "-config", cfg}, &stdout, &stderr))
}

func TestWriteTextWraps(t *testing.T) {
	sum := summary{
		Enabled: true,
		Units:   1,
		Total:   1,
		Passes:  []passCount{{Pass: optimize.PassCSE, Changes: 1}},
		Files: []fileReport{{Path: "Player.cs", Changes: []changeReport{{
			Pass:        optimize.PassCSE,
			Description: "Extracted common subexpression into a temporary local",
			Span:        "-",
			Before:      "Mathf.Sqrt(speed * speed + velocity * velocity) + Mathf.Sqrt(speed * speed + velocity * velocity)",
			After:       "__cse_0 + __cse_0",
		}}}},
	}
	var buf bytes.Buffer
	writeText(&buf, sum, 40)
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 40, line)
	}
	assert.Contains(t, buf.String(), "+ __cse_0 + __cse_0")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 40))
	assert.Equal(t, []string{""}, wrap("", 40))
	assert.Equal(t, []string{"aaaa bbbb cccc dddd", "eeee"}, wrap("aaaa bbbb cccc dddd eeee", 20))
	long := strings.Repeat("x", 45)
	assert.Equal(t, []string{long[:20], long[20:40], long[40:]}, wrap(long, 20))
}
