package cli

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/example/typeenum/internal/generator"
)

func newDescribeCommand(v *viper.Viper, configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe [patterns...]",
		Short: "Print the union definitions found in packages",
		Long: `describe prints every union definition with its variants and whether it
can be derived, without writing any file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v, *configPath)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			defer func() { _ = log.Sync() }()

			r := newRunner(cfg, log, cmd.OutOrStdout())
			pkgs, err := r.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			described, err := r.describe(pkgs)
			if err != nil {
				return err
			}
			return writeDescriptions(cmd.OutOrStdout(), format, described)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: json or yaml")
	return cmd
}

// describedUnion is one entry of the describe output.
type describedUnion struct {
	Union    generator.UnionTypeDescriptor `yaml:"union" json:"union"`
	Position string                        `yaml:"position" json:"position"`
	Error    string                        `yaml:"error,omitempty" json:"error,omitempty"`
}

func (r *runner) describe(pkgs []generator.Package) ([]describedUnion, error) {
	var out []describedUnion
	for _, pkg := range pkgs {
		sources, e, err := generator.Descriptors(pkg)
		if err != nil {
			return nil, err
		}
		for _, sf := range sources {
			for _, d := range sf.Unions {
				du := describedUnion{
					Union:    d,
					Position: e.FileSet().Position(d.Pos).String(),
				}
				if _, err := r.gen.Derive(d); err != nil {
					du.Error = err.Error()
				}
				out = append(out, du)
			}
		}
	}
	return out, nil
}

func writeDescriptions(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Newf("unsupported format: %s", format)
	}
}
