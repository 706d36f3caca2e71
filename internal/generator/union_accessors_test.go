package generator

import (
	"strings"
	"testing"
)

func valueDescriptor(strategy Strategy) UnionTypeDescriptor {
	return UnionTypeDescriptor{
		Name:       "Value",
		Definition: "valueVariants",
		Package:    "shapes",
		Target:     TargetInterface,
		Strategy:   strategy,
		Variants: []VariantDescriptor{
			{Name: "Number", Fields: []PayloadField{{Type: "int64"}}},
			{Name: "Text", Fields: []PayloadField{{Type: "string"}}},
			{Name: "Pair", Fields: []PayloadField{{Type: "uint8"}, {Type: "uint8"}}},
			{Name: "Raw", Fields: []PayloadField{{Type: "string"}}, Skip: true},
		},
	}
}

func TestGenerateAccessors(t *testing.T) {
	gen := NewUnionAccessorGenerator(StrategyPerField)
	data := newUnionData(valueDescriptor(""), StrategyPerField)

	reader, writer, extractor, err := gen.GenerateAccessors(data, data.Variants[0])
	if err != nil {
		t.Fatalf("GenerateAccessors failed: %v", err)
	}
	result := reader + writer + extractor

	expectedMethods := []string{
		"func (u Value) Number() (int64, bool)",
		"func (u *Value) NumberPtr() (*int64, bool)",
		"func (u Value) IntoNumber() typeenum.Extracted[int64, Value]",
		"return typeenum.Keep[int64](u)",
		"return typeenum.Take[int64, Value](u.pNumber)",
		"return &u.pNumber, true",
	}

	for _, expected := range expectedMethods {
		if !strings.Contains(result, expected) {
			t.Errorf("Generated code missing expected method: %s", expected)
		}
	}
}

func TestGenerateTupleAccessors(t *testing.T) {
	tests := []struct {
		name       string
		strategy   Strategy
		expected   []string
		unexpected []string
	}{
		{
			name:     "per-field",
			strategy: StrategyPerField,
			expected: []string{
				"func (u Value) Pair() (ValuePair, bool)",
				"return ValuePair{V0: u.pPair_0, V1: u.pPair_1}, true",
				"func (u *Value) PairPtr() (ValuePairRefs, bool)",
				"return ValuePairRefs{V0: &u.pPair_0, V1: &u.pPair_1}, true",
				"return typeenum.Take[ValuePair, Value](ValuePair{V0: u.pPair_0, V1: u.pPair_1})",
			},
		},
		{
			name:     "whole-tuple",
			strategy: StrategyWholeTuple,
			expected: []string{
				"func (u Value) Pair() (*ValuePair, bool)",
				"func (u *Value) PairPtr() (*ValuePair, bool)",
				"return typeenum.Take[ValuePair, Value](ValuePair{V0: u.pPair_0, V1: u.pPair_1})",
			},
			unexpected: []string{"ValuePairRefs", "return &u."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewUnionAccessorGenerator(tt.strategy)
			data := newUnionData(valueDescriptor(tt.strategy), tt.strategy)

			reader, writer, extractor, err := gen.GenerateAccessors(data, data.Variants[2])
			if err != nil {
				t.Fatalf("GenerateAccessors failed: %v", err)
			}
			result := reader + writer + extractor

			for _, expected := range tt.expected {
				if !strings.Contains(result, expected) {
					t.Errorf("Generated code missing %q", expected)
				}
			}
			for _, unexpected := range tt.unexpected {
				if strings.Contains(result, unexpected) {
					t.Errorf("Generated code should not contain %q", unexpected)
				}
			}
		})
	}
}

func TestGenerateConstructors(t *testing.T) {
	gen := NewUnionAccessorGenerator(StrategyPerField)
	data := newUnionData(valueDescriptor(""), StrategyPerField)

	tuple, constructor, err := gen.GenerateConstructors(data, data.Variants[0])
	if err != nil {
		t.Fatalf("GenerateConstructors failed: %v", err)
	}
	if tuple != "" {
		t.Errorf("single field variant should not declare a tuple, got:\n%s", tuple)
	}
	if !strings.Contains(constructor, "func NewValueFromNumber(v int64) Value") {
		t.Errorf("Generated code missing constructor, got:\n%s", constructor)
	}

	tuple, constructor, err = gen.GenerateConstructors(data, data.Variants[2])
	if err != nil {
		t.Fatalf("GenerateConstructors failed: %v", err)
	}
	expected := []string{
		"type ValuePair struct {\n\tV0 uint8\n\tV1 uint8\n}",
		"type ValuePairRefs struct {\n\tV0 *uint8\n\tV1 *uint8\n}",
		"func NewValueFromPair(v ValuePair) Value",
		"return makeValuePair(v.V0, v.V1)",
	}
	for _, e := range expected {
		if !strings.Contains(tuple+constructor, e) {
			t.Errorf("Generated code missing %q", e)
		}
	}
}

func TestGenerateRepresentation(t *testing.T) {
	gen := NewUnionAccessorGenerator(StrategyPerField)
	data := newUnionData(valueDescriptor(""), StrategyPerField)

	result, err := gen.GenerateRepresentation(data)
	if err != nil {
		t.Fatalf("GenerateRepresentation failed: %v", err)
	}

	expected := []string{
		"type ValueKind uint8",
		"ValueKindNumber ValueKind = iota + 1",
		"ValueKindRaw\n",
		"type Value struct {",
		"pPair_0 uint8",
		"pRaw string",
		"func (u Value) Kind() ValueKind",
		"func (u Value) Visit(v valueVariants)",
		"v.Pair(u.pPair_0, u.pPair_1)",
		"v.Raw(u.pRaw)",
		"func (u Value) Payload() any",
		"func makeValueRaw(v0 string) Value",
		`return "ValueKind(" + strconv.Itoa(int(k)) + ")"`,
	}
	for _, e := range expected {
		if !strings.Contains(result, e) {
			t.Errorf("Generated representation missing %q", e)
		}
	}

	// Excluded variants have no payload view.
	if strings.Contains(result, "return u.pRaw") {
		t.Error("Payload should not expose the excluded Raw variant")
	}
}

func TestExportName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Number", "Number"},
		{"number", "Number"},
		{"éclair", "Éclair"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := exportName(tt.input); got != tt.expected {
				t.Errorf("exportName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestVariadicStorage(t *testing.T) {
	v := newVariantData("Value", VariantDescriptor{
		Name:     "List",
		Fields:   []PayloadField{{Type: "string"}, {Type: "...int"}},
		Variadic: true,
		Skip:     true,
	})

	if v.Fields[1].Stored != "[]int" {
		t.Errorf("variadic field stored as %q, want []int", v.Fields[1].Stored)
	}
	if v.StorageArgs != "u.pList_0, u.pList_1..." {
		t.Errorf("storage args = %q", v.StorageArgs)
	}
	if v.Params != "v0 string, v1 []int" {
		t.Errorf("params = %q", v.Params)
	}
}
