// Package propertysource models a single named configuration source and
// the priority-ordered list that gets folded into an effective config.
package propertysource

import (
	"sort"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
	"github.com/cburgosro9303/vortex-config/internal/merge"
)

// Source is one named, prioritized slice of configuration.
type Source struct {
	Name     string
	Origin   string
	Priority int32
	Config   *configvalue.Value
}

// List is a priority-ordered collection of Sources, stable-sorted
// ascending by Priority (lower first, ties keep insertion order).
type List struct {
	sources []Source
}

// Add appends src and re-sorts the list by ascending priority. Sort is
// stable so equal-priority sources keep their relative insertion order.
func (l *List) Add(src Source) {
	l.sources = append(l.sources, src)
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority < l.sources[j].Priority
	})
}

// Sources returns the list contents in ascending-priority order.
func (l *List) Sources() []Source {
	out := make([]Source, len(l.sources))
	copy(out, l.sources)
	return out
}

// Len reports the number of sources.
func (l *List) Len() int { return len(l.sources) }

// Merge folds the sources left to right (ascending priority, overlay
// wins) into a single effective configuration value.
func (l *List) Merge() *configvalue.Value {
	values := make([]*configvalue.Value, len(l.sources))
	for i, s := range l.sources {
		values[i] = s.Config
	}
	return merge.MergeAll(values)
}

// HighestPrecedenceFirst returns the sources in descending priority
// order, matching the external response schema's "highest precedence
// first" ordering for propertySources.
func (l *List) HighestPrecedenceFirst() []Source {
	out := l.Sources()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
