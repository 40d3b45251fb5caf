package optimize

import (
	"log/slog"
	"sync"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/errors"
)

// Pipeline runs an ordered set of passes over a batch of units.
type Pipeline struct {
	passes  []Pass
	toggles *Toggles
	logger  *slog.Logger

	mu     sync.RWMutex
	filter PassFilter
	ctx    *Context
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithToggles shares process-wide toggles with the pipeline.
func WithToggles(t *Toggles) Option {
	return func(p *Pipeline) { p.toggles = t }
}

// WithFilter sets the initial pass filter.
func WithFilter(f PassFilter) Option {
	return func(p *Pipeline) { p.filter = f }
}

// NewPipeline creates a pipeline over passes, in registration order.
func NewPipeline(passes []Pass, opts ...Option) *Pipeline {
	p := &Pipeline{
		passes: passes,
		logger: slog.Default(),
		ctx:    NewContext(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.toggles == nil {
		p.toggles = NewToggles(true, false, nil)
	}
	return p
}

// SetFilter replaces the pass filter for subsequent runs.
func (p *Pipeline) SetFilter(f PassFilter) {
	p.mu.Lock()
	p.filter = f
	p.mu.Unlock()
}

// Toggles returns the switches the pipeline reads on every run.
func (p *Pipeline) Toggles() *Toggles { return p.toggles }

// Context returns the context of the most recent run.
func (p *Pipeline) Context() *Context {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ctx
}

// Passes returns the passes a run would execute, in execution order.
func (p *Pipeline) Passes() []Pass {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return orderPasses(p.passes, p.filter)
}

// Run rewrites units and returns them in input order. A pass that fails on
// a unit is logged and skipped for that unit only; nothing aborts the run.
func (p *Pipeline) Run(units []ast.Unit) []ast.Unit {
	ctx := NewContext()
	enabled := p.toggles.Enabled()
	ctx.setEnabled(enabled)

	p.mu.Lock()
	p.ctx = ctx
	filter := p.filter
	p.mu.Unlock()

	if !enabled {
		return units
	}

	debug := p.toggles.Debug()
	if debug {
		ctx.onRecord = func(e Entry) {
			p.logger.Debug("Optimization applied",
				"pass", e.PassID, "file", e.File, "span", e.Span.String(),
				"description", e.Description, "before", e.Before, "after", e.After)
		}
	}

	out := make([]ast.Unit, len(units))
	copy(out, units)

	for _, pass := range orderPasses(p.passes, filter) {
		id := pass.Descriptor().ID
		before := ctx.Count()
		for i := range out {
			if out[i].File == nil {
				continue
			}
			if file, ok := p.apply(pass, id, out[i], ctx); ok {
				out[i].File = file
			}
		}
		if debug {
			p.logger.Info("Optimization pass complete", "pass", id, "changes", ctx.Count()-before)
		}
	}

	p.logger.Debug("Optimization run complete", "units", len(out), "changes", ctx.Count())
	return out
}

// apply runs one pass on one unit. On failure the entries and string
// counts it recorded are rolled back and ok is false.
func (p *Pipeline) apply(pass Pass, id string, unit ast.Unit, ctx *Context) (file *ast.File, ok bool) {
	ctx.SetCurrentFile(unit.Path)
	mark := ctx.mark()
	strs := ctx.snapshotStrings()

	defer func() {
		if r := recover(); r != nil {
			p.fail(ctx, id, unit.Path, errors.PassPanic(r), mark, strs)
			file, ok = nil, false
		}
	}()

	result, err := pass.Transform(unit.File, ctx)
	if err != nil {
		p.fail(ctx, id, unit.Path, err, mark, strs)
		return nil, false
	}
	if result == nil {
		return unit.File, true
	}
	return result, true
}

func (p *Pipeline) fail(ctx *Context, id, path string, cause error, mark int, strs stringSnapshot) {
	ctx.rollback(mark, strs)
	err := errors.PassFailure(id, path, cause)
	p.logger.Warn("Optimization pass failed", "pass", id, "file", path, "error", err)
}
