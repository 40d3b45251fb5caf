// Package optimize rewrites parsed program units through an ordered
// sequence of independent, behavior-preserving passes and records every
// change it makes.
package optimize

//go:generate mockgen -destination=mock_pass_test.go -package=optimize . Pass

import "github.com/orizon-lang/astopt/internal/ast"

// Descriptor is the static metadata of a pass.
//
// Priority bands: 0-99 canonicalization, 100-199 structural rewrites,
// 200 and above advisory or cross-file analysis. Requires is an optional
// semantic version constraint on the host compiler.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
	Priority    int
	Requires    string
}

// Pass is one optimization over a single file.
//
// Transform must not mutate file. It returns the rewritten tree, or nil to
// mean "unchanged", and records one context entry per change.
type Pass interface {
	Descriptor() Descriptor
	Transform(file *ast.File, ctx *Context) (*ast.File, error)
}

// Pass identifiers.
const (
	PassDelegate  = "canon.delegate"
	PassLogging   = "canon.logging"
	PassConstFold = "opt.constfold"
	PassDeadCode  = "opt.deadcode"
	PassInline    = "opt.inline"
	PassUnroll    = "opt.unroll"
	PassLICM      = "opt.licm"
	PassCSE       = "opt.cse"
	PassPropCache = "opt.propcache"
	PassStrings   = "analysis.strings"
)
