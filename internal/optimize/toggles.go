package optimize

import (
	"log/slog"
	"sync/atomic"
)

// Toggles are the process-wide switches read by the runner at the start of
// every invocation. They are safe to flip from any goroutine, for example
// from a config file watcher.
type Toggles struct {
	enabled atomic.Bool
	debug   atomic.Bool
	level   *slog.LevelVar
}

// NewToggles creates toggles. level, when non-nil, follows the debug flag.
func NewToggles(enabled, debug bool, level *slog.LevelVar) *Toggles {
	t := &Toggles{level: level}
	t.enabled.Store(enabled)
	t.SetDebug(debug)
	return t
}

// Enabled reports the global optimization switch.
func (t *Toggles) Enabled() bool { return t.enabled.Load() }

// SetEnabled flips the global optimization switch.
func (t *Toggles) SetEnabled(v bool) { t.enabled.Store(v) }

// Debug reports whether per-change debug logging is on.
func (t *Toggles) Debug() bool { return t.debug.Load() }

// SetDebug flips debug logging and the bound log level.
func (t *Toggles) SetDebug(v bool) {
	t.debug.Store(v)
	if t.level == nil {
		return
	}
	if v {
		t.level.Set(slog.LevelDebug)
	} else {
		t.level.Set(slog.LevelInfo)
	}
}
