package variant

// Array is an ordered list of variants: the values of a condition, a forced
// sort order or a multi-valued document field.
type Array []Variant

// FromInterfaces converts plain Go values into an Array.
func FromInterfaces(vals ...any) (Array, error) {
	out := make(Array, 0, len(vals))
	for _, v := range vals {
		el, err := FromInterface(v)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// Equal reports element-wise equality under [Equal].
func (a Array) Equal(b Array) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !Equal(a[n], b[n]) {
			return false
		}
	}
	return true
}

// Contains reports whether some element of a equals v.
func (a Array) Contains(v Variant) bool {
	for _, el := range a {
		if Equal(el, v) {
			return true
		}
	}
	return false
}
