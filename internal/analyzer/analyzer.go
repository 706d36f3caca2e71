// Package analyzer reports union definitions typeenum cannot derive and
// misplaced or malformed typeenum directives.
package analyzer

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/example/typeenum/internal/generator"
)

// Analyzer is the typeenum definition linter.
var Analyzer = &analysis.Analyzer{
	Name: "typeenumlint",
	Doc:  "checks //typeenum:union definitions and directives",
	Run:  run,
}

func init() {
	Analyzer.Flags.StringVar(&strategy, "strategy", string(generator.DefaultStrategy), "accessor strategy used when a directive names none")
}

var strategy string

func run(pass *analysis.Pass) (interface{}, error) {
	gen := generator.NewUnionAccessorGenerator(generator.Strategy(strategy))

	var (
		outputs []*generator.GenerationOutput
		unions  = map[string]token.Pos{}
	)
	for _, file := range pass.Files {
		if ast.IsGenerated(file) {
			continue
		}
		checkDirectives(file, pass)

		path := pass.Fset.Position(file.Pos()).Filename
		for _, d := range generator.FileUnions(path, file).Unions {
			out, err := gen.Derive(d)
			if err != nil {
				reportDerivation(pass, d.Pos, err)
				continue
			}
			outputs = append(outputs, out)
			unions[out.Union] = d.Pos
		}
	}

	// Identifiers shared by two unions only collide once both are derived.
	for i := range outputs {
		if err := generator.CheckPackageNames(outputs[:i+1]); err != nil {
			reportDerivation(pass, unions[outputs[i].Union], err)
			break
		}
	}
	return nil, nil
}

func reportDerivation(pass *analysis.Pass, fallback token.Pos, err error) {
	pos, ok := generator.Position(err)
	if !ok {
		pos = fallback
	}
	pass.Reportf(pos, "%s", err.Error())
}

func checkDirectives(file *ast.File, pass *analysis.Pass) {
	used := generator.DirectiveComments(file)
	for _, group := range file.Comments {
		for _, c := range group.List {
			if msg, ok := directiveProblem(c.Text, used[c]); ok {
				pass.Reportf(c.Pos(), "%s", msg)
			}
		}
	}
}

// directiveProblem describes what is wrong with a comment that looks like a
// typeenum directive. attached tells whether the generator reads it.
func directiveProblem(text string, attached bool) (string, bool) {
	if rest, ok := strings.CutPrefix(text, "// typeenum:"); ok {
		verb, _, _ := strings.Cut(rest, " ")
		if verb == generator.VerbUnion || verb == generator.VerbSkip {
			return "malformed directive //typeenum:" + verb + ": remove the space after //", true
		}
		return "", false
	}

	rest, ok := strings.CutPrefix(text, generator.DirectivePrefix)
	if !ok {
		return "", false
	}
	verb, args, _ := strings.Cut(rest, " ")
	switch verb {
	case generator.VerbUnion:
		if !attached {
			return "//typeenum:union must document a type declaration", true
		}
		if key, ok := unknownOption(args); ok {
			return "unknown //typeenum:union option " + key, true
		}
	case generator.VerbSkip:
		if !attached {
			return "//typeenum:skip must document a method of a union definition", true
		}
	default:
		return "unknown directive //typeenum:" + verb, true
	}
	return "", false
}

// unknownOption returns the first key=value option of a union directive
// other than name and strategy.
func unknownOption(args string) (string, bool) {
	if i := strings.Index(args, "//"); i >= 0 {
		args = args[:i]
	}
	items := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, item := range items {
		key, _, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "name", "strategy":
		default:
			return key, true
		}
	}
	return "", false
}
