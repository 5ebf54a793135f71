package reindexer

import (
	"fmt"
	"slices"

	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// QueryField is a field reference inside a condition. It starts as a bare
// name and is lazily bound to schema data the first time a field source
// resolves it. Binding is one-shot: rebinding with different data is a
// logic error and panics.
type QueryField struct {
	fieldName      string
	idxNo          int
	fieldsSet      domain.FieldsSet
	fieldType      variant.Type
	selectType     variant.Type
	compositeTypes []variant.Type
}

func newQueryField(name string) QueryField {
	return QueryField{
		fieldName:  name,
		idxNo:      domain.IndexNotSet,
		fieldType:  variant.TypeUndefined,
		selectType: variant.TypeUndefined,
	}
}

// FieldName returns the field name as given to the builder.
func (f *QueryField) FieldName() string { return f.fieldName }

// IndexNo returns the bound index position, [domain.IndexUnindexed] for
// json-path fields or [domain.IndexNotSet] before binding.
func (f *QueryField) IndexNo() int { return f.idxNo }

// IsFieldIndexed reports whether the field is bound to a real index.
func (f *QueryField) IsFieldIndexed() bool { return f.idxNo >= 0 }

// FieldsHaveBeenSet reports whether binding data has been attached.
func (f *QueryField) FieldsHaveBeenSet() bool { return f.idxNo != domain.IndexNotSet }

// Fields returns the member index positions of a composite field.
func (f *QueryField) Fields() domain.FieldsSet { return f.fieldsSet }

// FieldType returns the declared value type of the bound field.
func (f *QueryField) FieldType() variant.Type { return f.fieldType }

// SelectType returns the type condition values are compared in.
func (f *QueryField) SelectType() variant.Type { return f.selectType }

// CompositeFieldsTypes returns the member types of a composite field.
func (f *QueryField) CompositeFieldsTypes() []variant.Type { return f.compositeTypes }

// HaveEmptyField reports whether some member of a bound composite field is
// missing from the schema.
func (f *QueryField) HaveEmptyField() bool { return f.fieldsSet.HaveEmpty() }

// SetIndexData binds schema data into the field. Binding twice with the
// same data is a no-op; binding twice with different data panics.
func (f *QueryField) SetIndexData(d domain.IndexData) {
	if f.FieldsHaveBeenSet() {
		if f.idxNo != d.IndexNo || !slices.Equal(f.fieldsSet, d.Fields) {
			panic(fmt.Sprintf("field %q is already bound to different index data", f.fieldName))
		}
		return
	}
	f.idxNo = d.IndexNo
	f.fieldsSet = d.Fields
	f.fieldType = d.FieldType
	f.selectType = d.SelectType
	f.compositeTypes = d.CompositeTypes
}

func (f *QueryField) equal(o *QueryField) bool {
	return f.fieldName == o.fieldName
}
