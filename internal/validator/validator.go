// Package validator checks configuration values and generated files.
package validator

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/example/typeenum/internal/generator"
)

// validatorInstance is cached; building one parses struct tags.
var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report fields under their configuration keys.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("gofile", isGoFileName)
		validatorInstance = v
	})
	return validatorInstance
}

// isGoFileName accepts a bare file name ending in .go.
func isGoFileName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return strings.HasSuffix(name, ".go") && len(name) > len(".go") &&
		!strings.ContainsAny(name, `/\`)
}

// FieldErrors maps a field to the validation tags it failed.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: failed %s", f, strings.Join(e[f], ", ")))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Struct validates a struct against its `validate` tags.
func Struct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := FieldErrors{}
		for _, ve := range verrs {
			tag := ve.Tag()
			if ve.Param() != "" {
				tag += "=" + ve.Param()
			}
			fe[ve.Field()] = append(fe[ve.Field()], tag)
		}
		return fe
	}
	return err
}

// ValidateGeneratedFile checks that content carries the generated header and
// is syntactically valid Go.
func ValidateGeneratedFile(path string, content []byte) error {
	if !generator.IsGenerated(content) {
		return errors.Newf("%s: missing %q header", path, generator.GeneratedHeader)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), path, content, parser.AllErrors); err != nil {
		return errors.Wrapf(err, "%s: generated code does not parse", path)
	}
	return nil
}

// CheckUpToDate compares generated files with what is on disk and returns
// the paths that are missing or differ.
func CheckUpToDate(files []generator.GeneratedFile) ([]string, error) {
	var stale []string
	for _, f := range files {
		current, err := os.ReadFile(filepath.Clean(f.Path))
		if err != nil {
			if os.IsNotExist(err) {
				stale = append(stale, f.Path)
				continue
			}
			return nil, errors.Wrapf(err, "failed to read %s", f.Path)
		}
		if !bytes.Equal(current, f.Content) {
			stale = append(stale, f.Path)
		}
	}
	return stale, nil
}
