package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/typeenum/internal/generator"
	"github.com/example/typeenum/internal/validator"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "per-field", cfg.Strategy)
	assert.Equal(t, generator.DefaultOutput, cfg.Output)
	assert.Equal(t, generator.DefaultSuffix, cfg.Suffix)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce)
	assert.Zero(t, cfg.Parallelism)
	assert.False(t, cfg.Colocated)
	assert.Equal(t, generator.StrategyPerField, cfg.DefaultStrategy())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".typeenum.yaml"), []byte(`
strategy: whole-tuple
output: unions_gen.go
parallelism: 2
debounce: 1s
`), 0644)
	require.NoError(t, err)

	t.Setenv("TYPEENUM_PARALLELISM", "8")

	v := New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("output", generator.DefaultOutput, "")
	flags.Bool("colocated", false, "")
	require.NoError(t, BindFlags(v, flags))
	require.NoError(t, flags.Parse([]string{"--colocated"}))

	cfg, err := Load(v, "", dir)
	require.NoError(t, err)

	assert.Equal(t, "whole-tuple", cfg.Strategy, "file overrides defaults")
	assert.Equal(t, "unions_gen.go", cfg.Output, "unchanged flags do not override the file")
	assert.Equal(t, 8, cfg.Parallelism, "environment overrides the file")
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.True(t, cfg.Colocated, "flags override everything")

	opts := cfg.GeneratorOptions()
	assert.Equal(t, generator.Options{Output: "unions_gen.go", Colocated: true, Suffix: generator.DefaultSuffix}, opts)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suffix: _union.go\n"), 0644))

	cfg, err := Load(New(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "_union.go", cfg.Suffix)

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown strategy",
			env:     map[string]string{"TYPEENUM_STRATEGY": "packed"},
			wantErr: "strategy: failed oneof",
		},
		{
			name:    "negative parallelism",
			env:     map[string]string{"TYPEENUM_PARALLELISM": "-1"},
			wantErr: "parallelism: failed gte=0",
		},
		{
			name:    "output in another directory",
			env:     map[string]string{"TYPEENUM_OUTPUT": "gen/out.go"},
			wantErr: "output: failed gofile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(New(), "", t.TempDir())
			require.Error(t, err)

			var fe validator.FieldErrors
			assert.ErrorAs(t, err, &fe)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
