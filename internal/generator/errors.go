package generator

import (
	"fmt"
	"go/token"

	"github.com/cockroachdb/errors"
)

// Error kinds. Every derivation failure matches exactly one of them with
// errors.Is.
var (
	ErrDuplicatePayloadType    = errors.New("duplicate payload type")
	ErrUnsupportedVariantShape = errors.New("unsupported variant shape")
	ErrInvalidTargetShape      = errors.New("invalid target shape")
	ErrNameCollision           = errors.New("generated name collision")
)

// DerivationError reports why a union could not be derived.
type DerivationError struct {
	Kind    error
	Union   string
	Variant string
	// First is the variant seen first when two variants share a payload shape.
	First  string
	Detail string
	Pos    token.Pos
}

func (e *DerivationError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrDuplicatePayloadType):
		return fmt.Sprintf("%s: variants %s and %s both hold %s", e.Union, e.First, e.Variant, e.Detail)
	case e.Variant != "":
		return fmt.Sprintf("%s: %v: variant %s %s", e.Union, e.Kind, e.Variant, e.Detail)
	default:
		return fmt.Sprintf("%s: %v: %s", e.Union, e.Kind, e.Detail)
	}
}

// Unwrap exposes the error kind.
func (e *DerivationError) Unwrap() error { return e.Kind }

func duplicatePayloadError(union string, first, second VariantDescriptor, key PayloadShapeKey) error {
	err := &DerivationError{
		Kind:    ErrDuplicatePayloadType,
		Union:   union,
		Variant: second.Name,
		First:   first.Name,
		Detail:  string(key),
		Pos:     second.Pos,
	}
	return errors.WithHint(err, "each variant must hold a unique payload type; mark one with //typeenum:skip to exclude it")
}

func unsupportedShapeError(union string, v VariantDescriptor, detail string) error {
	return &DerivationError{
		Kind:    ErrUnsupportedVariantShape,
		Union:   union,
		Variant: v.Name,
		Detail:  detail,
		Pos:     v.Pos,
	}
}

func invalidTargetError(d UnionTypeDescriptor, detail string) error {
	name := d.Name
	if name == "" {
		name = d.Definition
	}
	return &DerivationError{
		Kind:   ErrInvalidTargetShape,
		Union:  name,
		Detail: detail,
		Pos:    d.Pos,
	}
}

// invalidNameError reports a union name that is not a Go identifier at the
// directive that set it.
func invalidNameError(d UnionTypeDescriptor) error {
	pos := d.DirectivePos
	if !pos.IsValid() {
		pos = d.Pos
	}
	err := &DerivationError{
		Kind:   ErrInvalidTargetShape,
		Union:  d.Definition,
		Detail: fmt.Sprintf("union name %q is not a Go identifier", d.Name),
		Pos:    pos,
	}
	return errors.WithHint(err, "name= takes an identifier such as Value")
}

func nameCollisionError(union, ident, first, second string, pos token.Pos) error {
	err := &DerivationError{
		Kind:   ErrNameCollision,
		Union:  union,
		Detail: fmt.Sprintf("identifier %s is generated for both %s and %s", ident, first, second),
		Pos:    pos,
	}
	return errors.WithHint(err, "rename one of the variants or the union")
}

func importCollisionError(name string, first, second importClaim) error {
	where := func(c importClaim) string {
		if c.file == "" {
			return "generated code"
		}
		return c.file
	}
	union := second.union
	if union == "" {
		union = first.union
	}
	err := &DerivationError{
		Kind:   ErrNameCollision,
		Union:  union,
		Detail: fmt.Sprintf("import name %s refers to %q in %s and %q in %s", name, first.spec.Path, where(first), second.spec.Path, where(second)),
	}
	return errors.WithHint(err, "import the packages under distinct names, or generate with --colocated")
}

// Position returns the source position recorded on a derivation error.
func Position(err error) (token.Pos, bool) {
	var de *DerivationError
	if errors.As(err, &de) && de.Pos.IsValid() {
		return de.Pos, true
	}
	return token.NoPos, false
}
