package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, level := NewLogger(LogOptions{Output: &buf})

	logger.Debug("hidden")
	logger.Info("Optimization pass complete", "pass", "opt.cse", "changes", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "pass=opt.cse changes=2")

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(LogOptions{Format: "JSON", Debug: true, Output: &buf})

	logger.Debug("Optimization applied", "pass", "opt.licm")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "opt.licm", record["pass"])
}

func TestPrintVersion(t *testing.T) {
	var text bytes.Buffer
	PrintVersion(&text, "astopt", false)
	assert.True(t, strings.HasPrefix(text.String(), "astopt v"+Version+"\n"))
	assert.NotContains(t, text.String(), "Commit:")

	var js bytes.Buffer
	PrintVersion(&js, "astopt", true)
	var out struct {
		Tool        string      `json:"tool"`
		VersionInfo VersionInfo `json:"version_info"`
	}
	require.NoError(t, json.Unmarshal(js.Bytes(), &out))
	assert.Equal(t, "astopt", out.Tool)
	assert.Equal(t, Version, out.VersionInfo.Version)
}

func TestPrintCommandUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintCommandUsage(&buf, CommandInfo{
		Name:        "astopt",
		Usage:       "astopt -in DIR [-out DIR]",
		Description: "optimize exported syntax trees",
		Flags:       []FlagInfo{{Name: "in", Usage: "input directory", Default: "."}},
		Examples:    []string{"astopt -in build/ast"},
	})

	out := buf.String()
	assert.Contains(t, out, "astopt - optimize exported syntax trees")
	assert.Contains(t, out, "    -in")
	assert.Contains(t, out, "Default: .")
	assert.Contains(t, out, "EXAMPLES:\n    astopt -in build/ast")
}
