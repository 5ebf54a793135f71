package variant

import "math"

// Point is a 2D geometry point used by DWithin conditions.
type Point [2]float64

// X returns the first coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the second coordinate.
func (p Point) Y() float64 { return p[1] }

// DistanceTo returns the Euclidean distance between p and o.
func (p Point) DistanceTo(o Point) float64 {
	return math.Hypot(p[0]-o[0], p[1]-o[1])
}

// NewPoint returns the wire representation of a point: a tuple of two
// doubles.
func NewPoint(p Point) Variant {
	return NewTuple(NewDouble(p[0]), NewDouble(p[1]))
}

// AsPoint unpacks a tuple of two numeric values into a Point.
func (v Variant) AsPoint() (Point, bool) {
	if v.typ != TypeTuple && v.typ != TypeComposite {
		return Point{}, false
	}
	if len(v.sub) != 2 || !v.sub[0].typ.IsNumeric() || !v.sub[1].typ.IsNumeric() {
		return Point{}, false
	}
	return Point{v.sub[0].Float(), v.sub[1].Float()}, true
}
