// Package payload is the in-memory reference field source: a namespace
// schema with index definitions, an ordered row set and dotted-path
// fallback access, enough to run the matcher, evaluator and modifier
// without a storage engine.
package payload

import (
	"fmt"
	"iter"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"

	"github.com/maximbogatyrev/reindexer/adapter/fieldnavigator"
	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// IndexDef declares one index of a namespace. Composite indexes name
// their members in JSONPaths and carry [variant.TypeComposite].
type IndexDef struct {
	Name      string
	JSONPaths []string
	Type      variant.Type
	IsArray   bool
}

// Namespace implements [domain.FieldSource] over an in-memory document
// set ordered by primary key. The first index definition is the primary
// key.
type Namespace struct {
	name   string
	defs   []IndexDef
	byName map[string]int
	nav    *fieldnavigator.FieldNavigator
	rows   bst.BST[any, map[string]any]
	cmp    bst.Comparer[any, map[string]any]
}

// NewNamespace returns a namespace with the given schema. At least the
// primary key definition is required.
func NewNamespace(name string, defs ...IndexDef) (*Namespace, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("namespace %q needs at least a primary key index", name)
	}
	byName := make(map[string]int, len(defs))
	for n, def := range defs {
		if len(def.JSONPaths) == 0 {
			return nil, fmt.Errorf("index %q of namespace %q has no json paths", def.Name, name)
		}
		byName[def.Name] = n
	}
	cmp := newKeyComparer()
	return &Namespace{
		name:   name,
		defs:   defs,
		byName: byName,
		nav:    fieldnavigator.NewFieldNavigator(),
		rows:   avl.NewBST(true, 8, cmp),
		cmp:    cmp,
	}, nil
}

// Name returns the namespace name.
func (ns *Namespace) Name() string { return ns.name }

// Document converts a row into a map document. Maps pass through, structs
// convert by their json tags.
func (ns *Namespace) Document(row any) (map[string]any, error) {
	if doc, ok := row.(map[string]any); ok {
		return doc, nil
	}
	doc := make(map[string]any)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(row); err != nil {
		return nil, err
	}
	return doc, nil
}

// Upsert stores row, replacing a document with the same primary key.
func (ns *Namespace) Upsert(row any) error {
	doc, err := ns.Document(row)
	if err != nil {
		return err
	}
	pk, err := ns.primaryKey(doc)
	if err != nil {
		return err
	}
	if existing, err := ns.rows.Search(pk); err == nil && existing != nil {
		old := existing.Values()
		if len(old) > 0 {
			prev := old[0]
			if err := ns.rows.Delete(pk, &prev); err != nil {
				return err
			}
		}
	}
	return ns.rows.Insert(pk, doc)
}

// Delete removes the document stored under pk. Missing keys are a no-op.
func (ns *Namespace) Delete(pk any) error {
	existing, err := ns.rows.Search(pk)
	if err != nil || existing == nil {
		return err
	}
	vals := existing.Values()
	if len(vals) == 0 {
		return nil
	}
	doc := vals[0]
	return ns.rows.Delete(pk, &doc)
}

// Get returns the document stored under pk.
func (ns *Namespace) Get(pk any) (map[string]any, bool) {
	existing, err := ns.rows.Search(pk)
	if err != nil || existing == nil {
		return nil, false
	}
	vals := existing.Values()
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// Rows iterates the documents in primary key order.
func (ns *Namespace) Rows() iter.Seq[map[string]any] {
	return ns.rows.GetAll()
}

// Len returns the document count.
func (ns *Namespace) Len() int {
	return ns.rows.GetNumberOfKeys()
}

func (ns *Namespace) primaryKey(doc map[string]any) (any, error) {
	pk := ns.defs[0]
	vals, ok := ns.nav.GetValues(doc, pk.JSONPaths[0])
	if !ok || len(vals) == 0 {
		return nil, fmt.Errorf("document misses primary key %q", pk.Name)
	}
	return vals[0].Interface(), nil
}

// ResolveField implements [domain.FieldSource]. Composite names resolve
// either through a declared composite index or ad hoc as "a+b".
func (ns *Namespace) ResolveField(namespace, field string) (domain.IndexData, bool) {
	if namespace != ns.name {
		return domain.IndexData{}, false
	}
	if n, ok := ns.byName[field]; ok {
		def := ns.defs[n]
		d := domain.IndexData{
			IndexNo:    n,
			FieldType:  def.Type,
			SelectType: def.Type,
			IsArray:    def.IsArray,
		}
		if def.Type == variant.TypeComposite {
			d.Fields, d.CompositeTypes = ns.compositeMembers(def.JSONPaths)
			d.SelectType = variant.TypeTuple
		}
		return d, true
	}
	if strings.ContainsRune(field, '+') {
		fields, types := ns.compositeMembers(strings.Split(field, "+"))
		return domain.IndexData{
			IndexNo:        domain.IndexUnindexed,
			Fields:         fields,
			FieldType:      variant.TypeComposite,
			SelectType:     variant.TypeTuple,
			CompositeTypes: types,
		}, true
	}
	return domain.IndexData{}, false
}

func (ns *Namespace) compositeMembers(names []string) (domain.FieldsSet, []variant.Type) {
	fields := make(domain.FieldsSet, 0, len(names))
	types := make([]variant.Type, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if n, ok := ns.byName[name]; ok {
			fields = append(fields, n)
			types = append(types, ns.defs[n].Type)
			continue
		}
		fields = append(fields, domain.IndexNotSet)
		types = append(types, variant.TypeUndefined)
	}
	return fields, types
}

// Values implements [domain.FieldSource].
func (ns *Namespace) Values(row any, indexNo int) variant.Array {
	if indexNo < 0 || indexNo >= len(ns.defs) {
		return nil
	}
	def := ns.defs[indexNo]
	if def.Type == variant.TypeComposite {
		return ns.compositeValues(row, def.JSONPaths)
	}
	vals, _ := ns.valuesOf(row, def.JSONPaths[0])
	return vals
}

// ValuesByPath implements [domain.FieldSource]. Ad-hoc composite paths
// ("a+b") yield one tuple of member values.
func (ns *Namespace) ValuesByPath(row any, path string) (variant.Array, bool) {
	if strings.ContainsRune(path, '+') {
		vals := ns.compositeValues(row, strings.Split(path, "+"))
		return vals, len(vals) > 0
	}
	return ns.valuesOf(row, path)
}

func (ns *Namespace) valuesOf(row any, path string) (variant.Array, bool) {
	doc, err := ns.Document(row)
	if err != nil {
		return nil, false
	}
	return ns.nav.GetValues(doc, path)
}

// compositeValues builds the tuple of member values a composite field
// holds in row. Member paths may themselves be index names.
func (ns *Namespace) compositeValues(row any, memberPaths []string) variant.Array {
	members := make(variant.Array, 0, len(memberPaths))
	for _, p := range memberPaths {
		p = strings.TrimSpace(p)
		if n, ok := ns.byName[p]; ok {
			p = ns.defs[n].JSONPaths[0]
		}
		vals, ok := ns.valuesOf(row, p)
		if !ok || len(vals) == 0 {
			return nil
		}
		members = append(members, vals[0])
	}
	return variant.Array{variant.NewTuple(members...)}
}
