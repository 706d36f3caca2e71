package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// RuntimePackage is the import path of the support package generated code
// depends on, and RuntimeName the identifier it is referenced by.
const (
	RuntimePackage = "github.com/example/typeenum/pkg/typeenum"
	RuntimeName    = "typeenum"
)

type unionData struct {
	Name       string
	Kind       string
	Definition string
	Strategy   Strategy
	Runtime    string
	Variants   []variantData
}

type variantData struct {
	Name    string
	Export  string
	Kind    string
	Make    string
	Skip    bool
	Fields  []fieldData
	Tuple   string
	Refs    string
	Payload string // T for one field, the tuple type otherwise

	Params      string // v0 T0, v1 T1
	StorageArgs string // u.p0, u.p1 (spread for a variadic field)
	TupleArgs   string // v.V0, v.V1
	TupleLit    string // Tuple{V0: u.p0, V1: u.p1}
	RefsLit     string // Refs{V0: &u.p0, V1: &u.p1}
	Storage     string // storage field of a single-field variant
}

type fieldData struct {
	Index   int
	Type    string
	Storage string
	Stored  string // storage type, []T for a variadic field
	Spread  bool
}

func (v variantData) IsTuple() bool { return len(v.Fields) > 1 }

// exportName upper-cases the first letter of an identifier.
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// storageName names the union struct field holding one payload field.
func storageName(variant string, arity, index int) string {
	if arity == 1 {
		return "p" + variant
	}
	return fmt.Sprintf("p%s_%d", variant, index)
}

func newUnionData(d UnionTypeDescriptor, strategy Strategy) unionData {
	data := unionData{
		Name:       d.Name,
		Kind:       d.Name + "Kind",
		Definition: d.Definition,
		Strategy:   strategy,
		Runtime:    RuntimeName,
	}
	for _, v := range d.Variants {
		data.Variants = append(data.Variants, newVariantData(d.Name, v))
	}
	return data
}

func newVariantData(union string, v VariantDescriptor) variantData {
	export := exportName(v.Name)
	vd := variantData{
		Name:   v.Name,
		Export: export,
		Kind:   union + "Kind" + export,
		Make:   "make" + union + export,
		Skip:   v.Skip,
		Tuple:  union + export,
		Refs:   union + export + "Refs",
	}

	var params, storageArgs, tupleArgs, tupleLit, refsLit []string
	for i, f := range v.Fields {
		fd := fieldData{
			Index:   i,
			Type:    f.Type,
			Storage: storageName(v.Name, v.Arity(), i),
			Stored:  f.Type,
		}
		if v.Variadic && i == v.Arity()-1 {
			fd.Stored = "[]" + strings.TrimPrefix(f.Type, "...")
			fd.Spread = true
		}
		vd.Fields = append(vd.Fields, fd)

		params = append(params, fmt.Sprintf("v%d %s", i, fd.Stored))
		if fd.Spread {
			storageArgs = append(storageArgs, "u."+fd.Storage+"...")
		} else {
			storageArgs = append(storageArgs, "u."+fd.Storage)
		}
		tupleArgs = append(tupleArgs, fmt.Sprintf("v.V%d", i))
		tupleLit = append(tupleLit, fmt.Sprintf("V%d: u.%s", i, fd.Storage))
		refsLit = append(refsLit, fmt.Sprintf("V%d: &u.%s", i, fd.Storage))
	}
	vd.Params = strings.Join(params, ", ")
	vd.StorageArgs = strings.Join(storageArgs, ", ")
	vd.TupleArgs = strings.Join(tupleArgs, ", ")
	vd.TupleLit = vd.Tuple + "{" + strings.Join(tupleLit, ", ") + "}"
	vd.RefsLit = vd.Refs + "{" + strings.Join(refsLit, ", ") + "}"

	switch {
	case len(vd.Fields) == 1:
		vd.Payload = vd.Fields[0].Type
		vd.Storage = vd.Fields[0].Storage
	case len(vd.Fields) > 1:
		vd.Payload = vd.Tuple
	}
	return vd
}

var representationTemplate = template.Must(template.New("representation").Parse(`
// {{.Kind}} identifies the active variant of a {{.Name}}. The zero value
// means that no variant is set.
type {{.Kind}} uint8

const (
{{- range $i, $v := .Variants}}
	{{$v.Kind}}{{if eq $i 0}} {{$.Kind}} = iota + 1{{end}}
{{- end}}
)

// String returns the variant name.
func (k {{.Kind}}) String() string {
	switch k {
	{{- range .Variants}}
	case {{.Kind}}:
		return "{{.Name}}"
	{{- end}}
	}
	return "{{.Kind}}(" + strconv.Itoa(int(k)) + ")"
}

// {{.Name}} is a tagged union of the variants declared by {{.Definition}}.
type {{.Name}} struct {
	kind {{.Kind}}
	{{- range .Variants}}{{range .Fields}}
	{{.Storage}} {{.Stored}}
	{{- end}}{{end}}
}

// Kind reports the active variant.
func (u {{.Name}}) Kind() {{.Kind}} {
	return u.kind
}

// Visit calls the {{.Definition}} method of the active variant with its
// payload. Nothing is called for the zero {{.Name}}.
func (u {{.Name}}) Visit(v {{.Definition}}) {
	switch u.kind {
	{{- range .Variants}}
	case {{.Kind}}:
		v.{{.Name}}({{.StorageArgs}})
	{{- end}}
	}
}

// Payload returns the active payload. It returns nil for the zero {{.Name}}
// and for variants excluded from generation.
func (u {{.Name}}) Payload() any {
	switch u.kind {
	{{- range .Variants}}{{if and (not .Skip) .Fields}}
	case {{.Kind}}:
		return {{if .IsTuple}}{{.TupleLit}}{{else}}u.{{.Storage}}{{end}}
	{{- end}}{{end}}
	}
	return nil
}
{{range .Variants}}
func {{.Make}}({{.Params}}) {{$.Name}} {
	return {{$.Name}}{kind: {{.Kind}}{{range $i, $f := .Fields}}, {{$f.Storage}}: v{{$i}}{{end}}}
}
{{end}}`))

var tupleTemplate = template.Must(template.New("tuple").Parse(`
// {{.V.Tuple}} is the payload of the {{.V.Name}} variant of {{.U.Name}}.
type {{.V.Tuple}} struct {
	{{- range .V.Fields}}
	V{{.Index}} {{.Type}}
	{{- end}}
}
{{- if eq .U.Strategy "per-field"}}

// {{.V.Refs}} points at each payload field of an active {{.V.Name}} variant.
type {{.V.Refs}} struct {
	{{- range .V.Fields}}
	V{{.Index}} *{{.Type}}
	{{- end}}
}
{{- end}}
`))

var constructorTemplate = template.Must(template.New("constructor").Parse(`
// New{{.U.Name}}From{{.V.Export}} wraps v in the {{.V.Name}} variant.
func New{{.U.Name}}From{{.V.Export}}(v {{.V.Payload}}) {{.U.Name}} {
	{{- if .V.IsTuple}}
	return {{.V.Make}}({{.V.TupleArgs}})
	{{- else}}
	return {{.V.Make}}(v)
	{{- end}}
}
`))

var readerTemplate = template.Must(template.New("reader").Parse(`
{{- if not .V.IsTuple}}
// {{.V.Export}} returns the {{.V.Name}} payload and true, or the zero value
// and false when another variant is active.
func (u {{.U.Name}}) {{.V.Export}}() ({{.V.Payload}}, bool) {
	if u.kind != {{.V.Kind}} {
		var zero {{.V.Payload}}
		return zero, false
	}
	return u.{{.V.Storage}}, true
}
{{- else if eq .U.Strategy "per-field"}}
// {{.V.Export}} returns a copy of the {{.V.Name}} payload fields and true, or
// false when another variant is active.
func (u {{.U.Name}}) {{.V.Export}}() ({{.V.Tuple}}, bool) {
	if u.kind != {{.V.Kind}} {
		return {{.V.Tuple}}{}, false
	}
	return {{.V.TupleLit}}, true
}
{{- else}}
// {{.V.Export}} always reports false. The {{.V.Name}} payload is stored field
// by field, so there is no packed {{.V.Tuple}} to point at. Use
// Into{{.V.Export}} to take the payload out.
func (u {{.U.Name}}) {{.V.Export}}() (*{{.V.Tuple}}, bool) {
	return nil, false
}
{{- end}}
`))

var writerTemplate = template.Must(template.New("writer").Parse(`
{{- if not .V.IsTuple}}
// {{.V.Export}}Ptr returns a pointer to the {{.V.Name}} payload stored in u,
// or false when another variant is active. The pointer stays valid until u
// is reassigned.
func (u *{{.U.Name}}) {{.V.Export}}Ptr() (*{{.V.Payload}}, bool) {
	if u.kind != {{.V.Kind}} {
		return nil, false
	}
	return &u.{{.V.Storage}}, true
}
{{- else if eq .U.Strategy "per-field"}}
// {{.V.Export}}Ptr returns pointers to each {{.V.Name}} payload field stored
// in u, or false when another variant is active. The pointers stay valid
// until u is reassigned.
func (u *{{.U.Name}}) {{.V.Export}}Ptr() ({{.V.Refs}}, bool) {
	if u.kind != {{.V.Kind}} {
		return {{.V.Refs}}{}, false
	}
	return {{.V.RefsLit}}, true
}
{{- else}}
// {{.V.Export}}Ptr always reports false, see {{.V.Export}}.
func (u *{{.U.Name}}) {{.V.Export}}Ptr() (*{{.V.Tuple}}, bool) {
	return nil, false
}
{{- end}}
`))

var extractorTemplate = template.Must(template.New("extractor").Parse(`
// Into{{.V.Export}} consumes u and returns its {{.V.Name}} payload. When
// another variant is active u is handed back unchanged.
func (u {{.U.Name}}) Into{{.V.Export}}() {{.U.Runtime}}.Extracted[{{.V.Payload}}, {{.U.Name}}] {
	if u.kind != {{.V.Kind}} {
		return {{.U.Runtime}}.Keep[{{.V.Payload}}](u)
	}
	{{- if .V.IsTuple}}
	return {{.U.Runtime}}.Take[{{.V.Payload}}, {{.U.Name}}]({{.V.TupleLit}})
	{{- else}}
	return {{.U.Runtime}}.Take[{{.V.Payload}}, {{.U.Name}}](u.{{.V.Storage}})
	{{- end}}
}
`))

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute %s template", tmpl.Name())
	}
	return buf.String(), nil
}

// GenerateRepresentation renders the discriminant, storage struct and shared
// methods of a union. Every variant takes part, excluded ones included.
func (g *UnionAccessorGenerator) GenerateRepresentation(data unionData) (string, error) {
	return execute(representationTemplate, data)
}

// GenerateConstructors renders the conversion constructor of a variant, and
// its tuple types when it has several fields.
func (g *UnionAccessorGenerator) GenerateConstructors(data unionData, v variantData) (tuple, constructor string, err error) {
	in := struct {
		U unionData
		V variantData
	}{data, v}
	if v.IsTuple() {
		if tuple, err = execute(tupleTemplate, in); err != nil {
			return "", "", err
		}
	}
	constructor, err = execute(constructorTemplate, in)
	return tuple, constructor, err
}

// GenerateAccessors renders the read-accessor, write-accessor and
// consuming-extractor of a variant.
func (g *UnionAccessorGenerator) GenerateAccessors(data unionData, v variantData) (reader, writer, extractor string, err error) {
	in := struct {
		U unionData
		V variantData
	}{data, v}
	if reader, err = execute(readerTemplate, in); err != nil {
		return "", "", "", err
	}
	if writer, err = execute(writerTemplate, in); err != nil {
		return "", "", "", err
	}
	if extractor, err = execute(extractorTemplate, in); err != nil {
		return "", "", "", err
	}
	return reader, writer, extractor, nil
}
