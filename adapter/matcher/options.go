package matcher

import (
	"github.com/maximbogatyrev/reindexer/adapter/comparer"
	"github.com/maximbogatyrev/reindexer/domain"
)

// Option configures a [Matcher].
type Option func(*Matcher)

// WithJoinResults wires the verdict source join leaves are answered from.
// Without it every join leaf evaluates false.
func WithJoinResults(j domain.JoinResultSource) Option {
	return func(m *Matcher) {
		m.joins = j
	}
}

// WithComparer replaces the default comparer.
func WithComparer(c *comparer.Comparer) Option {
	return func(m *Matcher) {
		m.comparer = c
	}
}
