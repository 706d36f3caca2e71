package generator

import "strings"

// PayloadShapeKey fingerprints the payload types of a variant. Keys compare
// by text only: `byte` and `uint8` are different keys.
type PayloadShapeKey string

// ShapeKey builds the duplicate detection key of a variant. Variants that
// are not positional tuples get the empty key and never collide.
func ShapeKey(v VariantDescriptor) PayloadShapeKey {
	if v.Arity() == 0 || v.HasNamedFields() {
		return ""
	}
	if v.Arity() == 1 {
		return PayloadShapeKey(v.Fields[0].Type)
	}
	return PayloadShapeKey("(" + strings.Join(v.FieldTypes(), ", ") + ")")
}
