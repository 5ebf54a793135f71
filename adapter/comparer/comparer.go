// Package comparer applies condition operators to variant values. The
// matcher delegates every raw comparison here so ordering rules live in
// one place.
package comparer

import (
	"regexp"

	"github.com/shellyln/go-sql-like-expr/likeexpr"

	"github.com/maximbogatyrev/reindexer"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Comparer evaluates condition operators over fetched field values.
// Fetched values are matched existentially: a condition holds when some
// value satisfies it. Incomparable value pairs never satisfy anything.
type Comparer struct{}

// NewComparer returns a Comparer.
func NewComparer() *Comparer {
	return &Comparer{}
}

// CompareCond reports whether the values fetched from a row satisfy
// cond against the condition's target values.
func (c *Comparer) CompareCond(vals variant.Array, cond reindexer.CondType, targets variant.Array) bool {
	switch cond {
	case reindexer.CondAny:
		return len(vals) > 0
	case reindexer.CondEmpty:
		return len(vals) == 0
	case reindexer.CondEq, reindexer.CondSet:
		for _, v := range vals {
			if targets.Contains(v) {
				return true
			}
		}
		return false
	case reindexer.CondAllSet:
		for _, t := range targets {
			if !vals.Contains(t) {
				return false
			}
		}
		return len(targets) > 0
	case reindexer.CondLt, reindexer.CondLe, reindexer.CondGt, reindexer.CondGe:
		if len(targets) == 0 {
			return false
		}
		for _, v := range vals {
			if compareOrd(v, targets[0], cond) {
				return true
			}
		}
		return false
	case reindexer.CondRange:
		if len(targets) != 2 {
			return false
		}
		for _, v := range vals {
			if compareOrd(v, targets[0], reindexer.CondGe) && compareOrd(v, targets[1], reindexer.CondLe) {
				return true
			}
		}
		return false
	case reindexer.CondLike:
		if len(targets) == 0 || targets[0].Type() != variant.TypeString {
			return false
		}
		re, err := compileLike(targets[0].Str())
		if err != nil {
			return false
		}
		for _, v := range vals {
			if v.Type() == variant.TypeString && re.MatchString(v.Str()) {
				return true
			}
		}
		return false
	case reindexer.CondDWithin:
		if len(targets) != 2 {
			return false
		}
		center, ok := targets[0].AsPoint()
		if !ok || !targets[1].Type().IsNumeric() {
			return false
		}
		for _, v := range vals {
			p, ok := v.AsPoint()
			if ok && p.DistanceTo(center) <= targets[1].Float() {
				return true
			}
		}
		// A point field fetches as its two flat coordinates.
		if p, ok := flatPoint(vals); ok {
			return p.DistanceTo(center) <= targets[1].Float()
		}
		return false
	}
	return false
}

// CompareCondValues reports whether two fetched value sets satisfy cond,
// existentially over left/right pairs.
func (c *Comparer) CompareCondValues(lvals variant.Array, cond reindexer.CondType, rvals variant.Array) bool {
	switch cond {
	case reindexer.CondAllSet:
		for _, r := range rvals {
			if !lvals.Contains(r) {
				return false
			}
		}
		return len(rvals) > 0
	case reindexer.CondRange:
		return c.CompareCond(lvals, cond, rvals)
	default:
		for _, l := range lvals {
			for _, r := range rvals {
				if c.CompareCond(variant.Array{l}, cond, variant.Array{r}) {
					return true
				}
			}
		}
		return false
	}
}

func compareOrd(a, b variant.Variant, cond reindexer.CondType) bool {
	cmp, err := variant.Compare(a, b)
	if err != nil {
		return false
	}
	switch cond {
	case reindexer.CondLt:
		return cmp < 0
	case reindexer.CondLe:
		return cmp <= 0
	case reindexer.CondGt:
		return cmp > 0
	case reindexer.CondGe:
		return cmp >= 0
	}
	return false
}

func flatPoint(vals variant.Array) (variant.Point, bool) {
	if len(vals) != 2 || !vals[0].Type().IsNumeric() || !vals[1].Type().IsNumeric() {
		return variant.Point{}, false
	}
	return variant.Point{vals[0].Float(), vals[1].Float()}, true
}

func compileLike(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?s)^" + likeexpr.ToRegexp(pattern, '\\', false) + "$")
}
