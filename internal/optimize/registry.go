package optimize

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// DefaultPasses returns the built-in passes in registration order. The
// list is fixed; hosts choose among them with PassFilter, never by adding
// passes at run time.
func DefaultPasses() []Pass {
	return []Pass{
		&delegateCanonicalizer{},
		&logFormatCanonicalizer{},
		&constantFolder{},
		&deadCodeEliminator{},
		&methodInliner{},
		&loopUnroller{},
		&invariantHoister{},
		&commonSubexprEliminator{},
		&propertyCacher{},
		&stringInterner{},
	}
}

// PassFilter decides which registered passes take part in a run.
type PassFilter struct {
	Disabled    map[string]bool
	HostVersion *semver.Version
}

// Allows reports whether d is enabled, not switched off by configuration
// and compatible with the host version.
func (f PassFilter) Allows(d Descriptor) bool {
	if !d.Enabled || f.Disabled[d.ID] {
		return false
	}
	if d.Requires == "" || f.HostVersion == nil {
		return true
	}
	c, err := semver.NewConstraint(d.Requires)
	if err != nil {
		return false
	}
	return c.Check(f.HostVersion)
}

// orderPasses returns the allowed passes stable-sorted by priority, so
// equal priorities keep registration order.
func orderPasses(passes []Pass, filter PassFilter) []Pass {
	var out []Pass
	for _, p := range passes {
		if filter.Allows(p.Descriptor()) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Descriptor().Priority < out[j].Descriptor().Priority
	})
	return out
}
