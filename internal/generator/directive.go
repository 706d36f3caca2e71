package generator

import (
	"go/ast"
	"strings"
)

// DirectivePrefix starts every comment directive the generator reads. Like
// other Go directives there is no space after the slashes.
const DirectivePrefix = "//typeenum:"

// Directive verbs.
const (
	VerbUnion = "union"
	VerbSkip  = "skip"
)

// UnionDirective holds the options of a `//typeenum:union` line.
type UnionDirective struct {
	Name     string
	Strategy Strategy
}

// findDirective returns the argument text of the first directive with the
// given verb in a comment group.
func findDirective(groups []*ast.CommentGroup, verb string) (string, bool) {
	_, args, ok := findDirectiveComment(groups, verb)
	return args, ok
}

func findDirectiveComment(groups []*ast.CommentGroup, verb string) (*ast.Comment, string, bool) {
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
			if !ok {
				continue
			}
			v, args, _ := strings.Cut(rest, " ")
			if v == verb {
				return c, strings.TrimSpace(args), true
			}
		}
	}
	return nil, "", false
}

// hasSkip reports whether a comment group carries the exclusion marker.
func hasSkip(groups ...*ast.CommentGroup) bool {
	_, ok := findDirective(groups, VerbSkip)
	return ok
}

// parseUnionDirective parses arguments like `Value`, `name=Value` or
// `name=Value,strategy=whole-tuple`. Items are separated by commas or
// spaces. A first item without '=' is the union name. Unknown keys are
// ignored.
func parseUnionDirective(args string) UnionDirective {
	var d UnionDirective
	if args == "" {
		return d
	}
	parts := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for idx, p := range parts {
		if kv := strings.SplitN(p, "=", 2); len(kv) == 2 {
			key := strings.TrimSpace(kv[0])
			val := strings.TrimSpace(kv[1])
			switch key {
			case "name":
				d.Name = val
			case "strategy":
				d.Strategy = Strategy(val)
			}
		} else if idx == 0 && d.Name == "" {
			d.Name = p
		}
	}
	return d
}
