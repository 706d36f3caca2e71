package generator

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"
)

// LoadConfig selects the packages to derive unions for.
type LoadConfig struct {
	Dir      string
	Tags     string
	Tests    bool
	Patterns []string
}

// Package is a loaded Go package reduced to what the generator needs.
type Package struct {
	ID      string
	Name    string
	PkgPath string
	Dir     string
	GoFiles []string
}

// Load resolves package patterns with go/packages. Only names and file lists
// are requested: union definitions are read from syntax, and the generated
// code a package depends on may not exist yet, so type checking would fail.
// Package list errors are returned as warnings next to the packages.
func Load(ctx context.Context, cfg LoadConfig) ([]Package, []error, error) {
	pcfg := &packages.Config{
		Mode:    packages.NeedName | packages.NeedFiles,
		Context: ctx,
		Dir:     cfg.Dir,
		Tests:   cfg.Tests,
	}
	if cfg.Tags != "" {
		pcfg.BuildFlags = []string{"-tags=" + cfg.Tags}
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load packages")
	}
	if len(pkgs) == 0 {
		return nil, nil, errors.Newf("no packages found: %v", patterns)
	}

	var (
		out      []Package
		warnings []error
		seen     = map[string]bool{}
	)
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			warnings = append(warnings, perr)
		}
		if len(pkg.GoFiles) == 0 {
			continue
		}
		dir := filepath.Dir(pkg.GoFiles[0])
		// Test variants repeat the package files; keep one entry per
		// directory and package name, with the union of its files.
		key := dir + "\x00" + pkg.Name
		if seen[key] {
			for i := range out {
				if out[i].Dir == dir && out[i].Name == pkg.Name {
					out[i].GoFiles = mergeFiles(out[i].GoFiles, pkg.GoFiles)
				}
			}
			continue
		}
		seen[key] = true
		out = append(out, Package{
			ID:      pkg.ID,
			Name:    pkg.Name,
			PkgPath: pkg.PkgPath,
			Dir:     dir,
			GoFiles: pkg.GoFiles,
		})
	}
	return out, warnings, nil
}

func mergeFiles(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f] = true
	}
	out := append([]string(nil), a...)
	for _, f := range b {
		if !seen[f] {
			out = append(out, f)
			seen[f] = true
		}
	}
	return out
}
