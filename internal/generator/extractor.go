package generator

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Extractor finds union definitions in Go source files.
type Extractor struct {
	fileSet *token.FileSet
	files   map[string]*ast.File // filepath -> AST
}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{
		fileSet: token.NewFileSet(),
		files:   make(map[string]*ast.File),
	}
}

// FileSet returns the file set positions of extracted descriptors refer to.
func (e *Extractor) FileSet() *token.FileSet {
	return e.fileSet
}

// ParseFile parses one Go file. src may be nil, in which case the file is
// read from disk. Files written by the generator are ignored.
func (e *Extractor) ParseFile(path string, src []byte) error {
	if src == nil {
		var err error
		if src, err = os.ReadFile(path); err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}
	}
	if IsGenerated(src) {
		return nil
	}
	file, err := parser.ParseFile(e.fileSet, path, src, parser.ParseComments)
	if err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	e.files[path] = file
	return nil
}

// ParseDirectory parses all non-test Go files in a directory
func (e *Extractor) ParseDirectory(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return errors.Wrapf(err, "failed to list directory %s", dir)
	}
	for _, path := range paths {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		if err := e.ParseFile(path, nil); err != nil {
			return err
		}
	}
	return nil
}

// SourceFile groups the unions declared in one file with the imports their
// payload types may refer to.
type SourceFile struct {
	Path    string
	Package string
	Imports []ImportSpec
	Unions  []UnionTypeDescriptor
}

// ExtractUnions returns every file declaring at least one union, ordered by
// path. Unions keep their declaration order.
func (e *Extractor) ExtractUnions() []SourceFile {
	paths := make([]string, 0, len(e.files))
	for path := range e.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []SourceFile
	for _, path := range paths {
		if sf := FileUnions(path, e.files[path]); len(sf.Unions) > 0 {
			out = append(out, sf)
		}
	}
	return out
}

// FileUnions returns the unions declared in one parsed file.
func FileUnions(path string, file *ast.File) SourceFile {
	sf := SourceFile{
		Path:    path,
		Package: file.Name.Name,
		Imports: fileImports(file),
	}
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			c, args, ok := findDirectiveComment(typeDocs(gen, ts), VerbUnion)
			if !ok {
				continue
			}
			d := describeUnion(ts, parseUnionDirective(args))
			d.DirectivePos = c.Pos()
			d.Package = sf.Package
			d.SourceFile = path
			sf.Unions = append(sf.Unions, d)
		}
	}
	return sf
}

// typeDocs returns the comment groups documenting a type spec. The doc of
// the declaration only counts when it declares a single type.
func typeDocs(gen *ast.GenDecl, ts *ast.TypeSpec) []*ast.CommentGroup {
	docs := []*ast.CommentGroup{ts.Doc}
	if len(gen.Specs) == 1 {
		docs = append(docs, gen.Doc)
	}
	return docs
}

// DirectiveComments returns the directive comments the generator reads in a
// file: union directives on type declarations and skip markers inside union
// definitions. Linters use it to find misplaced directives.
func DirectiveComments(file *ast.File) map[*ast.Comment]bool {
	used := map[*ast.Comment]bool{}
	mark := func(groups []*ast.CommentGroup, verb string) bool {
		found := false
		for _, g := range groups {
			if g == nil {
				continue
			}
			for _, c := range g.List {
				if rest, ok := strings.CutPrefix(c.Text, DirectivePrefix); ok {
					if v, _, _ := strings.Cut(rest, " "); v == verb {
						used[c] = true
						found = true
					}
				}
			}
		}
		return found
	}

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if !mark(typeDocs(gen, ts), VerbUnion) {
				continue
			}
			iface, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}
			for _, m := range iface.Methods.List {
				mark([]*ast.CommentGroup{m.Doc, m.Comment}, VerbSkip)
			}
		}
	}
	return used
}

// DefaultUnionName derives a union name from its definition: a trailing
// "Variants" is dropped and the first letter is upper-cased.
func DefaultUnionName(definition string) string {
	name := strings.TrimSuffix(definition, "Variants")
	if name == "" {
		name = definition
	}
	return exportName(name)
}

func describeUnion(ts *ast.TypeSpec, dir UnionDirective) UnionTypeDescriptor {
	d := UnionTypeDescriptor{
		Name:       dir.Name,
		Definition: ts.Name.Name,
		Strategy:   dir.Strategy,
		TypeParams: ts.TypeParams.NumFields(),
		Pos:        ts.Pos(),
	}
	if d.Name == "" {
		d.Name = DefaultUnionName(d.Definition)
	}

	iface, isIface := ts.Type.(*ast.InterfaceType)
	switch {
	case ts.Assign.IsValid():
		d.Target = TargetAlias
		return d
	case isIface:
		d.Target = TargetInterface
	default:
		if _, ok := ts.Type.(*ast.StructType); ok {
			d.Target = TargetStruct
		} else {
			d.Target = TargetOther
		}
		return d
	}

	for _, m := range iface.Methods.List {
		if len(m.Names) == 0 {
			d.Embedded = append(d.Embedded, types.ExprString(m.Type))
			continue
		}
		ft, ok := m.Type.(*ast.FuncType)
		if !ok {
			continue
		}
		d.Variants = append(d.Variants, describeVariant(m.Names[0], ft, hasSkip(m.Doc, m.Comment)))
	}
	return d
}

func describeVariant(name *ast.Ident, ft *ast.FuncType, skip bool) VariantDescriptor {
	v := VariantDescriptor{
		Name:    name.Name,
		Skip:    skip,
		Results: ft.Results.NumFields(),
		Pos:     name.Pos(),
	}
	for _, p := range ft.Params.List {
		typ := types.ExprString(p.Type)
		if _, ok := p.Type.(*ast.Ellipsis); ok {
			v.Variadic = true
		}
		if len(p.Names) == 0 {
			v.Fields = append(v.Fields, PayloadField{Type: typ})
			continue
		}
		for _, n := range p.Names {
			f := PayloadField{Type: typ}
			if n.Name != "_" {
				f.Name = n.Name
			}
			v.Fields = append(v.Fields, f)
		}
	}
	return v
}

// fileImports returns the imports of a file. Blank imports never qualify a
// payload type and are left out.
func fileImports(file *ast.File) []ImportSpec {
	var specs []ImportSpec
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		spec := ImportSpec{Path: path}
		if imp.Name != nil {
			if imp.Name.Name == "_" {
				continue
			}
			spec.Name = imp.Name.Name
		}
		specs = append(specs, spec)
	}
	return specs
}
