package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/typeenum/internal/config"
	"github.com/example/typeenum/internal/generator"
	"github.com/example/typeenum/internal/validator"
)

// ErrStale is returned in check mode when generated files need updating.
var ErrStale = errors.New("generated files are out of date")

func newGenerateCommand(v *viper.Viper, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate code for the unions of the given packages",
		Example: `  typeenum generate ./...
  typeenum generate --strategy whole-tuple --colocated ./shapes
  typeenum generate --check ./...`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, v, *configPath, args)
		},
	}
	addGenerateFlags(cmd)
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("strategy", string(generator.DefaultStrategy), "Accessor strategy for multi-field variants: per-field or whole-tuple")
	flags.String("output", generator.DefaultOutput, "Generated file name per package")
	flags.Bool("colocated", false, "Write one file next to each definition file instead")
	flags.String("suffix", generator.DefaultSuffix, "File name suffix used with --colocated")
	flags.Bool("check", false, "Report out-of-date files instead of writing them")
	flags.Bool("watch", false, "Regenerate when source files change")
	flags.Duration("debounce", 0, "Delay before regenerating in watch mode (default 200ms)")
	flags.Int("parallelism", 0, "Packages generated concurrently (default GOMAXPROCS)")
}

func runGenerate(cmd *cobra.Command, v *viper.Viper, configPath string, patterns []string) error {
	cfg, err := loadConfig(cmd, v, configPath)
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	defer func() { _ = log.Sync() }()

	r := newRunner(cfg, log, cmd.OutOrStdout())
	if cfg.Watch {
		return r.watch(cmd.Context(), patterns)
	}
	return r.run(cmd.Context(), patterns)
}

// runner generates code for a set of package patterns.
type runner struct {
	cfg *config.Config
	gen *generator.UnionAccessorGenerator
	log *zap.SugaredLogger
	out io.Writer
}

func newRunner(cfg *config.Config, log *zap.SugaredLogger, out io.Writer) *runner {
	return &runner{
		cfg: cfg,
		gen: generator.NewUnionAccessorGenerator(cfg.DefaultStrategy()),
		log: log,
		out: out,
	}
}

func (r *runner) load(ctx context.Context, patterns []string) ([]generator.Package, error) {
	pkgs, warnings, err := generator.Load(ctx, generator.LoadConfig{
		Tags:     r.cfg.Tags,
		Tests:    r.cfg.Tests,
		Patterns: patterns,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		r.log.Debugw("Package load warning", "error", w)
	}
	r.log.Debugw("Loaded packages", "count", len(pkgs))
	return pkgs, nil
}

// run loads the packages and generates them in parallel. Every package is
// processed even when some fail.
func (r *runner) run(ctx context.Context, patterns []string) error {
	pkgs, err := r.load(ctx, patterns)
	if err != nil {
		return err
	}

	limit := r.cfg.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*generator.PackageResult, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.gen.GeneratePackage(pkg, r.cfg.GeneratorOptions())
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return r.apply(results)
}

// apply writes or checks the results and reports failures.
func (r *runner) apply(results []*generator.PackageResult) error {
	var (
		failed int
		stale  []string
	)
	for _, res := range results {
		log := r.log.With("package", res.Package.PkgPath)

		if len(res.Debug) > 0 {
			if err := generator.WriteFiles(res.Debug); err != nil {
				return err
			}
			for _, f := range res.Debug {
				log.Warnw("Wrote unformatted source for inspection", "file", f.Path)
			}
		}

		if len(res.Errors) > 0 {
			for _, err := range res.Errors {
				log.Errorw("Derivation failed", "error", err.Error())
				if hint := errors.FlattenHints(err); hint != "" {
					log.Infow("Hint", "hint", hint)
				}
			}
			failed += len(res.Errors)
			continue
		}

		if len(res.Files) == 0 {
			log.Debugw("No unions found")
			continue
		}

		if r.cfg.Check {
			s, err := validator.CheckUpToDate(res.Files)
			if err != nil {
				return err
			}
			stale = append(stale, s...)
			continue
		}

		for _, f := range res.Files {
			if err := validator.ValidateGeneratedFile(f.Path, f.Content); err != nil {
				return err
			}
		}
		if err := generator.WriteFiles(res.Files); err != nil {
			return err
		}
		for _, f := range res.Files {
			log.Infow("Generated", "file", f.Path, "unions", f.Unions)
		}
	}

	if failed > 0 {
		return errors.Newf("%d union(s) failed to derive", failed)
	}
	if len(stale) > 0 {
		for _, path := range stale {
			fmt.Fprintln(r.out, path)
		}
		return errors.WithHint(errors.Wrapf(ErrStale, "%d file(s)", len(stale)), "run typeenum generate to update them")
	}
	return nil
}
