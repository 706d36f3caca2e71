package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePackage(t *testing.T, files map[string]string) Package {
	t.Helper()
	dir := t.TempDir()
	pkg := Package{Name: "shapes", PkgPath: "example.com/shapes", Dir: dir}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		pkg.GoFiles = append(pkg.GoFiles, path)
	}
	return pkg
}

const valueFile = `package shapes

//typeenum:union
type valueVariants interface {
	Number(int64)
	Pair(uint8, uint8)
}
`

const eventFile = `package shapes

import "time"

//typeenum:union name=Event
type eventVariants interface {
	At(time.Time)
	Key(rune)
}
`

func TestGeneratePackage(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"value.go": valueFile,
		"event.go": eventFile,
		"other.go": "package shapes\n\nfunc helper() {}\n",
	})

	gen := NewUnionAccessorGenerator("")
	res, err := gen.GeneratePackage(pkg, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Files, 1)

	f := res.Files[0]
	assert.Equal(t, filepath.Join(pkg.Dir, DefaultOutput), f.Path)
	assert.Equal(t, []string{"Event", "Value"}, f.Unions)
	assert.Contains(t, string(f.Content), "func NewEventFromAt(v time.Time) Event")
	assert.Contains(t, string(f.Content), "func NewValueFromPair(v ValuePair) Value")

	require.NoError(t, WriteFiles(res.Files))

	// The written file is ignored on the next run.
	pkg.GoFiles = append(pkg.GoFiles, f.Path)
	again, err := gen.GeneratePackage(pkg, Options{})
	require.NoError(t, err)
	require.Len(t, again.Files, 1)
	assert.Equal(t, f.Content, again.Files[0].Content)
}

func TestGeneratePackageColocated(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"value.go":      valueFile,
		"event_test.go": eventFile,
	})

	res, err := NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{Colocated: true})
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	var paths []string
	for _, f := range res.Files {
		paths = append(paths, filepath.Base(f.Path))
	}
	assert.ElementsMatch(t, []string{"event_typeenum_test.go", "value_typeenum.go"}, paths)
}

func TestGeneratePackageColocatedCollision(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"value.go": valueFile,
		"pair.go":  "package shapes\n\n//typeenum:union name=ValuePair\ntype pairVariants interface {\n\tOnly(bool)\n}\n",
	})

	res, err := NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{Colocated: true})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrNameCollision)
	assert.Contains(t, res.Errors[0].Error(), "identifier ValuePair is generated for both")
	assert.Empty(t, res.Files)
}

func TestGeneratePackageImportAliasClash(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"a.go": "package shapes\n\nimport x \"time\"\n\n//typeenum:union name=A\ntype aVariants interface {\n\tWait(x.Duration)\n}\n",
		"b.go": "package shapes\n\nimport x \"net/url\"\n\n//typeenum:union name=B\ntype bVariants interface {\n\tLink(*x.URL)\n}\n",
	})

	res, err := NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrNameCollision)
	assert.Contains(t, res.Errors[0].Error(), `import name x refers to "time" in a.go and "net/url" in b.go`)
	assert.Empty(t, res.Files)

	// Each file keeps its own imports when written next to its definitions.
	res, err = NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{Colocated: true})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Files, 2)
}

func TestGeneratePackageDropsUnusedClashingImport(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"a.go": "package shapes\n\nimport x \"time\"\n\n//typeenum:union name=A\ntype aVariants interface {\n\tWait(x.Duration)\n}\n",
		"b.go": "package shapes\n\nimport x \"net/url\"\n\nvar _ = x.URL{}\n\n//typeenum:union name=B\ntype bVariants interface {\n\tCount(int)\n}\n",
	})

	res, err := NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Files, 1)

	content := string(res.Files[0].Content)
	assert.Contains(t, content, `x "time"`)
	assert.NotContains(t, content, "net/url")
	assert.Contains(t, content, "func NewAFromWait(v x.Duration) A")
}

func TestGeneratePackageErrors(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"value.go": valueFile,
		"dup.go": `package shapes

//typeenum:union
type dupVariants interface {
	A(int)
	B(int)
}
`,
	})

	res, err := NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Empty(t, res.Files, "a package with errors writes nothing")
	assert.ErrorIs(t, res.Errors[0], ErrDuplicatePayloadType)
	assert.Contains(t, res.Errors[0].Error(), "dup.go:6:2")
}

func TestGeneratePackageWithoutUnions(t *testing.T) {
	pkg := writePackage(t, map[string]string{
		"other.go": "package shapes\n",
	})

	res, err := NewUnionAccessorGenerator("").GeneratePackage(pkg, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Empty(t, res.Errors)
}

func TestOutputPath(t *testing.T) {
	pkg := Package{Dir: "/src/shapes"}
	tests := []struct {
		name   string
		source string
		opts   Options
		want   string
	}{
		{"per package", "/src/shapes/value.go", Options{}, "/src/shapes/typeenum_gen.go"},
		{"per package test file", "/src/shapes/value_test.go", Options{}, "/src/shapes/typeenum_gen_test.go"},
		{"custom output", "/src/shapes/value.go", Options{Output: "unions.go"}, "/src/shapes/unions.go"},
		{"colocated", "/src/shapes/value.go", Options{Colocated: true}, "/src/shapes/value_typeenum.go"},
		{"colocated suffix", "/src/shapes/value.go", Options{Colocated: true, Suffix: "_enum.go"}, "/src/shapes/value_enum.go"},
		{"colocated test file", "/src/shapes/value_test.go", Options{Colocated: true}, "/src/shapes/value_typeenum_test.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(pkg, SourceFile{Path: tt.source}, tt.opts.withDefaults())
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}
