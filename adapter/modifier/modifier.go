// Package modifier applies the update payload of a query to documents.
package modifier

import (
	"encoding/json"

	"github.com/maximbogatyrev/reindexer"
	"github.com/maximbogatyrev/reindexer/adapter/evaluator"
	"github.com/maximbogatyrev/reindexer/adapter/fieldnavigator"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Modifier executes update entries against map documents: plain value
// writes, json object writes and column drops. Expression values are
// computed per document through the arithmetic evaluator.
type Modifier struct {
	eval *evaluator.Evaluator
	nav  *fieldnavigator.FieldNavigator
}

// NewModifier returns a modifier.
func NewModifier(options ...Option) *Modifier {
	m := &Modifier{
		nav: fieldnavigator.NewFieldNavigator(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Option configures a [Modifier].
type Option func(*Modifier)

// WithEvaluator wires the evaluator expression values are computed with.
// Without it expression entries fail.
func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(m *Modifier) {
		m.eval = e
	}
}

// WithFieldNavigator replaces the default field navigator.
func WithFieldNavigator(nav *fieldnavigator.FieldNavigator) Option {
	return func(m *Modifier) {
		m.nav = nav
	}
}

// ErrNoEvaluator is returned when an expression entry is applied without a
// wired evaluator.
type ErrNoEvaluator struct{}

// Error implements [error].
func (e ErrNoEvaluator) Error() string {
	return "update expression without an expression evaluator"
}

// Modify applies entries to doc in order, mutating it in place.
func (m *Modifier) Modify(doc map[string]any, entries ...reindexer.UpdateEntry) error {
	for n := range entries {
		if err := m.applyEntry(doc, &entries[n]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Modifier) applyEntry(doc map[string]any, u *reindexer.UpdateEntry) error {
	switch u.Mode() {
	case reindexer.FieldModeDrop:
		m.nav.DropField(doc, u.Column())
		return nil
	case reindexer.FieldModeSetJson:
		return m.applyObject(doc, u)
	default:
		return m.applySet(doc, u)
	}
}

func (m *Modifier) applySet(doc map[string]any, u *reindexer.UpdateEntry) error {
	values := u.Values()
	if u.IsExpression() {
		if m.eval == nil {
			return ErrNoEvaluator{}
		}
		if len(values) == 0 {
			return nil
		}
		computed, err := m.eval.Evaluate(values[0].Str(), doc, u.Column())
		if err != nil {
			return err
		}
		values = computed
	}
	m.nav.SetField(doc, u.Column(), nativeValue(values, u.IsArray()))
	return nil
}

func (m *Modifier) applyObject(doc map[string]any, u *reindexer.UpdateEntry) error {
	objects := make([]any, 0, len(u.Values()))
	for _, v := range u.Values() {
		var obj any
		if err := json.Unmarshal([]byte(v.Str()), &obj); err != nil {
			return err
		}
		objects = append(objects, obj)
	}
	if u.IsArray() {
		m.nav.SetField(doc, u.Column(), objects)
		return nil
	}
	if len(objects) > 0 {
		m.nav.SetField(doc, u.Column(), objects[0])
	}
	return nil
}

// nativeValue converts computed variants back into the plain Go shape the
// document holds: a single scalar unless the column is an array.
func nativeValue(values variant.Array, isArray bool) any {
	if !isArray && len(values) == 1 {
		return values[0].Interface()
	}
	out := make([]any, len(values))
	for n, v := range values {
		out[n] = v.Interface()
	}
	return out
}
