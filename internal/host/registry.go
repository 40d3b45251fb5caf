// Package host models the compiler side of the optimizer: a registry of
// pre-compilation hooks that receive the full batch of parsed units.
package host

import (
	"sync"

	"github.com/orizon-lang/astopt/internal/ast"
	"github.com/orizon-lang/astopt/internal/errors"
	"github.com/orizon-lang/astopt/internal/optimize"
)

// PreCompileHook receives every parsed unit of a compilation and returns
// the batch to compile in its place.
type PreCompileHook func(units []ast.Unit) []ast.Unit

// PipelineHook is the name the optimizer registers under.
const PipelineHook = "astopt.pipeline"

type namedHook struct {
	name string
	hook PreCompileHook
}

// Registry holds hooks in registration order. Each name registers once.
type Registry struct {
	mu    sync.RWMutex
	hooks []namedHook
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds hook under name.
func (r *Registry) Register(name string, hook PreCompileHook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hooks {
		if h.name == name {
			return errors.DuplicateHook(name)
		}
	}
	r.hooks = append(r.hooks, namedHook{name: name, hook: hook})
	return nil
}

// RegisterPipeline registers p.Run as the optimizer hook.
func (r *Registry) RegisterPipeline(p *optimize.Pipeline) error {
	return r.Register(PipelineHook, p.Run)
}

// Names returns the registered hook names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.hooks))
	for i, h := range r.hooks {
		names[i] = h.name
	}
	return names
}

// Invoke runs every hook once, feeding each the previous hook's output.
func (r *Registry) Invoke(units []ast.Unit) []ast.Unit {
	r.mu.RLock()
	hooks := make([]namedHook, len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.RUnlock()

	for _, h := range hooks {
		units = h.hook(units)
	}
	return units
}
