package generator

import (
	"go/token"
	"strings"
)

// Strategy selects how accessors are generated for multi-field variants.
type Strategy string

const (
	// StrategyPerField returns one reference per payload field. Each field is
	// addressable in the union storage, so the accessors can succeed.
	StrategyPerField Strategy = "per-field"
	// StrategyWholeTuple declares accessors returning a reference to a packed
	// tuple. Payloads are stored field by field, so they always report absent.
	StrategyWholeTuple Strategy = "whole-tuple"
)

// MaxVariants is the number of variants a uint8 discriminant can tell apart;
// zero is reserved for the unset union.
const MaxVariants = 255

// DefaultStrategy is used when neither the directive nor the configuration
// picks one.
const DefaultStrategy = StrategyPerField

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyPerField || s == StrategyWholeTuple
}

// Target kinds recorded for a declaration carrying the union directive.
const (
	TargetInterface = "interface"
	TargetStruct    = "struct"
	TargetAlias     = "alias"
	TargetOther     = "other"
)

// UnionTypeDescriptor describes one union definition found in source.
type UnionTypeDescriptor struct {
	Name       string              `yaml:"name" json:"name"`
	Definition string              `yaml:"definition" json:"definition"`
	Package    string              `yaml:"package" json:"package"`
	SourceFile string              `yaml:"source_file" json:"source_file"`
	Target     string              `yaml:"target" json:"target"`
	TypeParams int                 `yaml:"type_params,omitempty" json:"type_params,omitempty"`
	Embedded   []string            `yaml:"embedded,omitempty" json:"embedded,omitempty"`
	Strategy   Strategy            `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Variants   []VariantDescriptor `yaml:"variants" json:"variants"`
	Pos        token.Pos           `yaml:"-" json:"-"`
	// DirectivePos is the position of the //typeenum:union comment.
	DirectivePos token.Pos `yaml:"-" json:"-"`
}

// VariantDescriptor describes one arm of a union.
type VariantDescriptor struct {
	Name     string         `yaml:"name" json:"name"`
	Fields   []PayloadField `yaml:"fields,omitempty" json:"fields,omitempty"`
	Skip     bool           `yaml:"skip,omitempty" json:"skip,omitempty"`
	Results  int            `yaml:"results,omitempty" json:"results,omitempty"`
	Variadic bool           `yaml:"variadic,omitempty" json:"variadic,omitempty"`
	Pos      token.Pos      `yaml:"-" json:"-"`
}

// PayloadField is one payload slot of a variant. Name is empty for
// positional fields.
type PayloadField struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Type string `yaml:"type" json:"type"`
}

// Arity returns the number of payload fields.
func (v VariantDescriptor) Arity() int {
	return len(v.Fields)
}

// HasNamedFields reports whether any payload field carries a name.
func (v VariantDescriptor) HasNamedFields() bool {
	for _, f := range v.Fields {
		if f.Name != "" {
			return true
		}
	}
	return false
}

// FieldTypes returns the payload field types in declaration order.
func (v VariantDescriptor) FieldTypes() []string {
	types := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		types[i] = f.Type
	}
	return types
}

// Included returns the variants that take part in generation.
func (d UnionTypeDescriptor) Included() []VariantDescriptor {
	var out []VariantDescriptor
	for _, v := range d.Variants {
		if !v.Skip {
			out = append(out, v)
		}
	}
	return out
}

// GenerationOutput is the generated code for one union.
type GenerationOutput struct {
	Union string
	// Representation declares the discriminant, the storage struct and the
	// methods every variant shares, excluded ones included.
	Representation string
	Groups         []CapabilityGroup
	// Names lists the package-level identifiers the output declares.
	Names []string
}

// CapabilityGroup is the generated code for one non-excluded variant.
type CapabilityGroup struct {
	Variant     string
	Tuple       string
	Constructor string
	Reader      string
	Writer      string
	Extractor   string
}

// Source concatenates all fragments in declaration order.
func (o *GenerationOutput) Source() string {
	var sb strings.Builder
	sb.WriteString(o.Representation)
	for _, g := range o.Groups {
		for _, part := range []string{g.Tuple, g.Constructor, g.Reader, g.Writer, g.Extractor} {
			if part == "" {
				continue
			}
			sb.WriteString("\n")
			sb.WriteString(part)
		}
	}
	return sb.String()
}

// Group returns the capability group generated for a variant.
func (o *GenerationOutput) Group(variant string) (CapabilityGroup, bool) {
	for _, g := range o.Groups {
		if g.Variant == variant {
			return g, true
		}
	}
	return CapabilityGroup{}, false
}
