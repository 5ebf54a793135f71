// Package fieldnavigator extracts and mutates values at dotted paths
// inside document rows, converting leaves to variants.
package fieldnavigator

import (
	"strings"

	"github.com/goccy/go-reflect"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// FieldNavigator walks rows given as map documents or plain structs. Path
// segments traverse maps by key and structs by field name or json tag;
// slices along the way flatten into the result.
type FieldNavigator struct{}

// NewFieldNavigator returns a FieldNavigator.
func NewFieldNavigator() *FieldNavigator {
	return &FieldNavigator{}
}

// GetValues returns all values at a dotted path inside row, and false when
// the path does not exist.
func (fn *FieldNavigator) GetValues(row any, path string) (variant.Array, bool) {
	leaves, found := collect(row, strings.Split(path, "."))
	if !found {
		return nil, false
	}
	out := make(variant.Array, 0, len(leaves))
	for _, leaf := range leaves {
		v, err := variant.FromInterface(leaf)
		if err != nil {
			continue
		}
		// A slice leaf is the field's value list, not a single tuple.
		if v.Type() == variant.TypeTuple {
			out = append(out, v.Tuple()...)
			continue
		}
		out = append(out, v)
	}
	return out, true
}

func collect(v any, segments []string) ([]any, bool) {
	if len(segments) == 0 {
		return []any{v}, true
	}
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		sub, ok := t[segments[0]]
		if !ok {
			return nil, false
		}
		return collect(sub, segments[1:])
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return collect(rv.Elem().Interface(), segments)
	case reflect.Slice, reflect.Array:
		var out []any
		found := false
		for n := 0; n < rv.Len(); n++ {
			leaves, ok := collect(rv.Index(n).Interface(), segments)
			if ok {
				found = true
				out = append(out, leaves...)
			}
		}
		return out, found
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		sub := rv.MapIndex(reflect.ValueOf(segments[0]))
		if !sub.IsValid() {
			return nil, false
		}
		return collect(sub.Interface(), segments[1:])
	case reflect.Struct:
		if f, ok := structField(rv, segments[0]); ok {
			return collect(f.Interface(), segments[1:])
		}
	}
	return nil, false
}

// structField looks a segment up by json tag first, then by field name.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for n := 0; n < rt.NumField(); n++ {
		sf := rt.Field(n)
		if sf.PkgPath != "" {
			continue
		}
		tag := sf.Tag.Get("json")
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == name {
			return rv.Field(n), true
		}
	}
	for n := 0; n < rt.NumField(); n++ {
		sf := rt.Field(n)
		if sf.PkgPath == "" && sf.Name == name {
			return rv.Field(n), true
		}
	}
	return reflect.Value{}, false
}

// SetField writes value at a dotted path inside doc, creating intermediate
// maps as needed.
func (fn *FieldNavigator) SetField(doc map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	for _, seg := range segments[:len(segments)-1] {
		sub, ok := doc[seg].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			doc[seg] = sub
		}
		doc = sub
	}
	doc[segments[len(segments)-1]] = value
}

// DropField removes the value at a dotted path inside doc. Missing paths
// are a no-op.
func (fn *FieldNavigator) DropField(doc map[string]any, path string) {
	segments := strings.Split(path, ".")
	for _, seg := range segments[:len(segments)-1] {
		sub, ok := doc[seg].(map[string]any)
		if !ok {
			return
		}
		doc = sub
	}
	delete(doc, segments[len(segments)-1])
}
