package payload

import (
	"github.com/vinicius-lino-figueiredo/bst"

	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// keyComparer orders primary keys through the variant comparison rules.
type keyComparer struct{}

func newKeyComparer() bst.Comparer[any, map[string]any] {
	return &keyComparer{}
}

// CompareKeys implements bst.Comparer.
func (kc *keyComparer) CompareKeys(a any, b any) (int, error) {
	av, err := variant.FromInterface(a)
	if err != nil {
		return 0, err
	}
	bv, err := variant.FromInterface(b)
	if err != nil {
		return 0, err
	}
	return variant.Compare(av, bv)
}

// CompareValues implements bst.Comparer. Documents under one key are
// replaced wholesale, so identity is all the tree needs.
func (kc *keyComparer) CompareValues(a map[string]any, b map[string]any) (bool, error) {
	return true, nil
}
