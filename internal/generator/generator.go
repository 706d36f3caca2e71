package generator

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"
)

// GeneratedHeader starts every file the generator writes.
const GeneratedHeader = "// Code generated by typeenum. DO NOT EDIT."

// UnionAccessorGenerator derives conversion constructors and accessors for
// union definitions.
type UnionAccessorGenerator struct {
	strategy Strategy
}

// NewUnionAccessorGenerator creates a generator. strategy is used for unions
// whose directive does not pick one; an empty value means DefaultStrategy.
func NewUnionAccessorGenerator(strategy Strategy) *UnionAccessorGenerator {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	return &UnionAccessorGenerator{strategy: strategy}
}

// Derive generates the code of one union. It validates the target, runs the
// duplicate pass, then generates every variant. The first error aborts the
// whole union and no output is returned.
func (g *UnionAccessorGenerator) Derive(d UnionTypeDescriptor) (*GenerationOutput, error) {
	strategy, err := g.validateTarget(d)
	if err != nil {
		return nil, err
	}

	if err := DetectDuplicates(d); err != nil {
		return nil, err
	}

	data := newUnionData(d, strategy)
	out := &GenerationOutput{Union: d.Name}

	for i, v := range d.Variants {
		if v.Skip {
			continue
		}
		if err := validateVariantShape(d.Name, v); err != nil {
			return nil, err
		}

		vd := data.Variants[i]
		tuple, constructor, err := g.GenerateConstructors(data, vd)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate constructors for %s.%s", d.Name, v.Name)
		}
		reader, writer, extractor, err := g.GenerateAccessors(data, vd)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate accessors for %s.%s", d.Name, v.Name)
		}
		out.Groups = append(out.Groups, CapabilityGroup{
			Variant:     v.Name,
			Tuple:       tuple,
			Constructor: constructor,
			Reader:      reader,
			Writer:      writer,
			Extractor:   extractor,
		})
	}

	out.Representation, err = g.GenerateRepresentation(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate representation for %s", d.Name)
	}

	names, err := checkNames(d, data)
	if err != nil {
		return nil, err
	}
	out.Names = names

	return out, nil
}

// validateTarget checks that the descriptor is a union definition the
// generator understands and resolves the strategy to use.
func (g *UnionAccessorGenerator) validateTarget(d UnionTypeDescriptor) (Strategy, error) {
	switch {
	case d.Target != TargetInterface:
		return "", invalidTargetError(d, fmt.Sprintf("%s is a %s type, want an interface listing the variants", d.Definition, d.Target))
	case d.TypeParams > 0:
		return "", invalidTargetError(d, fmt.Sprintf("%s has type parameters", d.Definition))
	case len(d.Embedded) > 0:
		return "", invalidTargetError(d, fmt.Sprintf("%s embeds %s; only methods can declare variants", d.Definition, strings.Join(d.Embedded, ", ")))
	case d.Name == "":
		return "", invalidTargetError(d, "union name is empty")
	case !token.IsIdentifier(d.Name):
		return "", invalidNameError(d)
	case d.Name == d.Definition:
		return "", invalidTargetError(d, fmt.Sprintf("union name %s is the definition name; set name= in the directive", d.Name))
	case len(d.Variants) == 0:
		return "", invalidTargetError(d, fmt.Sprintf("%s declares no variants", d.Definition))
	case len(d.Variants) > MaxVariants:
		return "", invalidTargetError(d, fmt.Sprintf("%s declares %d variants; the discriminant holds at most %d", d.Definition, len(d.Variants), MaxVariants))
	}

	strategy := d.Strategy
	if strategy == "" {
		strategy = g.strategy
	}
	if !strategy.Valid() {
		return "", invalidTargetError(d, fmt.Sprintf("unknown strategy %q", strategy))
	}
	return strategy, nil
}

// validateVariantShape rejects variants that are not positional tuples of
// at least one field.
func validateVariantShape(union string, v VariantDescriptor) error {
	switch {
	case v.Arity() == 0:
		return unsupportedShapeError(union, v, "has no payload fields")
	case v.HasNamedFields():
		return unsupportedShapeError(union, v, "uses named fields; declare positional parameters only")
	case v.Results > 0:
		return unsupportedShapeError(union, v, "declares results")
	case v.Variadic:
		return unsupportedShapeError(union, v, "is variadic")
	}
	return nil
}

// checkNames makes sure no two generated identifiers coincide. Package-level
// names and the members of the union struct are checked separately. It
// returns the package-level names.
func checkNames(d UnionTypeDescriptor, data unionData) ([]string, error) {
	pkg := map[string]string{}
	members := map[string]string{}

	add := func(set map[string]string, ident, owner string) error {
		if first, ok := set[ident]; ok {
			return nameCollisionError(d.Name, ident, first, owner, d.Pos)
		}
		set[ident] = owner
		return nil
	}

	if err := add(pkg, data.Name, "the union"); err != nil {
		return nil, err
	}
	if err := add(pkg, data.Kind, "the discriminant"); err != nil {
		return nil, err
	}
	for _, m := range []string{"kind", "Kind", "Visit", "Payload"} {
		if err := add(members, m, "the union"); err != nil {
			return nil, err
		}
	}

	for _, v := range data.Variants {
		owner := "variant " + v.Name
		idents := []string{v.Kind, v.Make}
		methods := []string{}
		for _, f := range v.Fields {
			methods = append(methods, f.Storage)
		}
		if !v.Skip {
			idents = append(idents, "New"+data.Name+"From"+v.Export)
			if v.IsTuple() {
				idents = append(idents, v.Tuple)
				if data.Strategy == StrategyPerField {
					idents = append(idents, v.Refs)
				}
			}
			methods = append(methods, v.Export, v.Export+"Ptr", "Into"+v.Export)
		}
		for _, ident := range idents {
			if err := add(pkg, ident, owner); err != nil {
				return nil, err
			}
		}
		for _, m := range methods {
			if err := add(members, m, owner); err != nil {
				return nil, err
			}
		}
	}

	names := make([]string, 0, len(pkg))
	for ident := range pkg {
		names = append(names, ident)
	}
	sort.Strings(names)
	return names, nil
}

// CheckPackageNames reports identifiers declared by more than one union of
// the same package.
func CheckPackageNames(outputs []*GenerationOutput) error {
	owners := map[string]string{}
	for _, out := range outputs {
		for _, ident := range out.Names {
			if first, ok := owners[ident]; ok {
				return nameCollisionError(out.Union, ident, first, out.Union, token.NoPos)
			}
			owners[ident] = out.Union
		}
	}
	return nil
}

// ImportSpec is an import carried from a definition file into the
// generated file.
type ImportSpec struct {
	Name string
	Path string
}

// LocalName returns the name the import is referred to by. Without an
// explicit name it is guessed from the path the way goimports does.
func (s ImportSpec) LocalName() string {
	if s.Name != "" {
		return s.Name
	}
	base := path.Base(s.Path)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(s.Path); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	}); i >= 0 {
		base = base[:i]
	}
	return base
}

func (s ImportSpec) String() string {
	if s.Name != "" {
		return s.Name + " " + strconv.Quote(s.Path)
	}
	return strconv.Quote(s.Path)
}

// GenerateFile assembles the outputs of one package into a formatted Go
// file. filename is only used by the import fixer to tell which package the
// file belongs to. On formatting failures the unformatted source is returned
// with the error.
func (g *UnionAccessorGenerator) GenerateFile(filename, packageName string, specs []ImportSpec, outputs []*GenerationOutput) ([]byte, error) {
	if err := CheckPackageNames(outputs); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\n", GeneratedHeader)
	fmt.Fprintf(&buf, "package %s\n\n", packageName)

	buf.WriteString("import (\n")
	fmt.Fprintf(&buf, "\t%q\n", "strconv")
	fmt.Fprintf(&buf, "\t%s\n", ImportSpec{Path: RuntimePackage})
	for _, spec := range dedupeImports(specs) {
		if spec.Path == RuntimePackage || spec.Path == "strconv" {
			continue
		}
		fmt.Fprintf(&buf, "\t%s\n", spec)
	}
	buf.WriteString(")\n")

	for _, out := range outputs {
		buf.WriteString(out.Source())
		buf.WriteString("\n")
	}

	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return buf.Bytes(), errors.Wrap(err, "failed to format generated code")
	}
	return formatted, nil
}

func dedupeImports(specs []ImportSpec) []ImportSpec {
	seen := make(map[ImportSpec]bool, len(specs))
	var out []ImportSpec
	for _, s := range specs {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IsGenerated reports whether src starts with the generated header.
func IsGenerated(src []byte) bool {
	return bytes.HasPrefix(src, []byte(GeneratedHeader))
}

// writeFile writes content to a file, creating directories if necessary
func writeFile(filename string, content []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return os.WriteFile(filename, content, 0644)
}
