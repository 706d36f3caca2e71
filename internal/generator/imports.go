package generator

import (
	"go/ast"
	"go/parser"
	"path/filepath"
	"sort"
	"strings"
)

// importClaim is one import of a definition file, or of the generated code
// itself when file is empty.
type importClaim struct {
	spec  ImportSpec
	file  string
	union string
	used  bool
}

// resolveImports merges the imports of the definition files that share one
// generated file. Imports whose local names differ never clash. When one name
// is bound to several paths, imports of files whose payloads do not use the
// name are dropped; if payloads of two files still need different paths the
// union of the later file cannot be generated.
func resolveImports(sources []SourceFile) ([]ImportSpec, error) {
	claims := map[string][]importClaim{
		"strconv":   {{spec: ImportSpec{Path: "strconv"}, used: true}},
		RuntimeName: {{spec: ImportSpec{Path: RuntimePackage}, used: true}},
	}
	var out []ImportSpec
	for _, sf := range sources {
		used := payloadQualifiers(sf)
		union := ""
		if len(sf.Unions) > 0 {
			union = sf.Unions[0].Name
		}
		for _, spec := range sf.Imports {
			name := spec.LocalName()
			if name == "." {
				out = append(out, spec)
				continue
			}
			claims[name] = append(claims[name], importClaim{
				spec:  spec,
				file:  filepath.Base(sf.Path),
				union: union,
				used:  used[name],
			})
		}
	}

	names := make([]string, 0, len(claims))
	for name := range claims {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kept := claims[name]
		if distinctPaths(kept) > 1 {
			kept = kept[:0:0]
			for _, c := range claims[name] {
				if c.used {
					kept = append(kept, c)
				}
			}
			if first, second, ok := firstClash(kept); ok {
				return nil, importCollisionError(name, first, second)
			}
		}
		for _, c := range kept {
			if c.file != "" {
				out = append(out, c.spec)
			}
		}
	}
	return out, nil
}

func distinctPaths(claims []importClaim) int {
	paths := map[string]bool{}
	for _, c := range claims {
		paths[c.spec.Path] = true
	}
	return len(paths)
}

func firstClash(claims []importClaim) (importClaim, importClaim, bool) {
	for i, c := range claims {
		for _, d := range claims[i+1:] {
			if c.spec.Path != d.spec.Path {
				return c, d, true
			}
		}
	}
	return importClaim{}, importClaim{}, false
}

// payloadQualifiers returns the package names the payload types of a file
// refer to. Excluded variants count, their payloads are stored too.
func payloadQualifiers(sf SourceFile) map[string]bool {
	used := map[string]bool{}
	for _, d := range sf.Unions {
		for _, v := range d.Variants {
			for _, f := range v.Fields {
				expr, err := parser.ParseExpr(strings.TrimPrefix(f.Type, "..."))
				if err != nil {
					continue
				}
				ast.Inspect(expr, func(n ast.Node) bool {
					if sel, ok := n.(*ast.SelectorExpr); ok {
						if id, ok := sel.X.(*ast.Ident); ok {
							used[id.Name] = true
						}
					}
					return true
				})
			}
		}
	}
	return used
}
