package generator

// DetectDuplicates fails when two non-excluded variants share a payload
// shape. The first variant declared keeps the shape; the error names it
// first and points at the second one.
func DetectDuplicates(d UnionTypeDescriptor) error {
	seen := make(map[PayloadShapeKey]VariantDescriptor)
	for _, v := range d.Variants {
		if v.Skip {
			continue
		}
		key := ShapeKey(v)
		if key == "" {
			continue
		}
		if first, ok := seen[key]; ok {
			return duplicatePayloadError(d.Name, first, v, key)
		}
		seen[key] = v
	}
	return nil
}
