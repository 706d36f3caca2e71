package generator

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Output defaults.
const (
	DefaultOutput = "typeenum_gen.go"
	DefaultSuffix = "_typeenum.go"
)

// Options controls where generated code is written.
type Options struct {
	// Output is the file name used per package.
	Output string
	// Colocated writes one file next to every definition file instead,
	// named after it with Suffix.
	Colocated bool
	Suffix    string
}

func (o Options) withDefaults() Options {
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Suffix == "" {
		o.Suffix = DefaultSuffix
	}
	return o
}

// GeneratedFile is the content of one output file.
type GeneratedFile struct {
	Path    string
	Content []byte
	Unions  []string
}

// PackageResult is what generation produced for one package.
type PackageResult struct {
	Package Package
	Files   []GeneratedFile
	// Debug holds the unformatted source of files that failed to format.
	Debug []GeneratedFile
	// Errors holds one error per failed union or file. When it is not empty
	// Files is empty: a package is written completely or not at all.
	Errors []error
}

// Descriptors parses the files of a package and returns its union
// definitions grouped by file.
func Descriptors(pkg Package) ([]SourceFile, *Extractor, error) {
	e := NewExtractor()
	for _, path := range pkg.GoFiles {
		if err := e.ParseFile(path, nil); err != nil {
			return nil, nil, errors.Wrapf(err, "package %s", pkg.PkgPath)
		}
	}
	return e.ExtractUnions(), e, nil
}

// GeneratePackage derives every union of a package and assembles the output
// files.
func (g *UnionAccessorGenerator) GeneratePackage(pkg Package, opts Options) (*PackageResult, error) {
	opts = opts.withDefaults()
	sources, e, err := Descriptors(pkg)
	if err != nil {
		return nil, err
	}

	res := &PackageResult{Package: pkg}
	if len(sources) == 0 {
		return res, nil
	}

	type plan struct {
		path    string
		sources []SourceFile
		outputs []*GenerationOutput
	}
	var plans []*plan
	byPath := map[string]*plan{}

	for _, sf := range sources {
		path := outputPath(pkg, sf, opts)
		p, ok := byPath[path]
		if !ok {
			p = &plan{path: path}
			byPath[path] = p
			plans = append(plans, p)
		}
		p.sources = append(p.sources, sf)

		for _, d := range sf.Unions {
			out, err := g.Derive(d)
			if err != nil {
				res.Errors = append(res.Errors, withPosition(e, err))
				continue
			}
			p.outputs = append(p.outputs, out)
		}
	}
	if len(res.Errors) > 0 {
		return res, nil
	}

	// Colocated files share the package scope too.
	var all []*GenerationOutput
	for _, p := range plans {
		all = append(all, p.outputs...)
	}
	if err := CheckPackageNames(all); err != nil {
		res.Errors = append(res.Errors, err)
		return res, nil
	}

	for _, p := range plans {
		specs, err := resolveImports(p.sources)
		if err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "%s", p.path))
			continue
		}
		content, err := g.GenerateFile(p.path, pkg.Name, specs, p.outputs)
		if err != nil {
			if content != nil {
				res.Debug = append(res.Debug, GeneratedFile{Path: p.path + ".debug", Content: content})
			}
			res.Errors = append(res.Errors, errors.Wrapf(err, "%s", p.path))
			continue
		}
		f := GeneratedFile{Path: p.path, Content: content}
		for _, out := range p.outputs {
			f.Unions = append(f.Unions, out.Union)
		}
		res.Files = append(res.Files, f)
	}
	if len(res.Errors) > 0 {
		res.Files = nil
	}
	return res, nil
}

// outputPath picks the generated file for a definition file. Definitions in
// test files go to a test file so they stay in the same package.
func outputPath(pkg Package, sf SourceFile, opts Options) string {
	isTest := strings.HasSuffix(sf.Path, "_test.go")
	if opts.Colocated {
		base := strings.TrimSuffix(sf.Path, ".go")
		if isTest {
			base = strings.TrimSuffix(sf.Path, "_test.go")
			return base + strings.TrimSuffix(opts.Suffix, ".go") + "_test.go"
		}
		return base + opts.Suffix
	}
	name := opts.Output
	if isTest {
		name = strings.TrimSuffix(name, ".go") + "_test.go"
	}
	return filepath.Join(pkg.Dir, name)
}

func withPosition(e *Extractor, err error) error {
	pos, ok := Position(err)
	if !ok {
		return err
	}
	return errors.Wrapf(err, "%s", e.FileSet().Position(pos))
}

// WriteFiles writes generated files to disk.
func WriteFiles(files []GeneratedFile) error {
	for _, f := range files {
		if err := writeFile(f.Path, f.Content); err != nil {
			return errors.Wrapf(err, "failed to write %s", f.Path)
		}
	}
	return nil
}
