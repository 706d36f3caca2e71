// Package cli provides the command-line interface for typeenum.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/typeenum/internal/config"
)

// Execute creates and runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Running the root command without
// a subcommand generates code, like `typeenum generate`.
func NewRootCommand() *cobra.Command {
	v := config.New()
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "typeenum [patterns...]",
		Short: "Generate constructors and accessors for tagged unions",
		Long: `typeenum reads interfaces marked with //typeenum:union and writes the
union type, conversion constructors and accessors for each variant.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, v, configPath, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .typeenum.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("tags", "", "Comma-separated build tags used to load packages")
	rootCmd.PersistentFlags().Bool("tests", false, "Include test files")
	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(newGenerateCommand(v, &configPath))
	rootCmd.AddCommand(newDescribeCommand(v, &configPath))

	return rootCmd
}

// loadConfig binds the flags of the running command and loads the
// configuration.
func loadConfig(cmd *cobra.Command, v *viper.Viper, configPath string) (*config.Config, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.Load(v, configPath, "")
}
