// Package config loads typeenum settings from defaults, a .typeenum.yaml
// file, TYPEENUM_* environment variables and command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/typeenum/internal/generator"
	"github.com/example/typeenum/internal/validator"
)

// EnvPrefix prefixes environment variables, e.g. TYPEENUM_STRATEGY.
const EnvPrefix = "TYPEENUM"

// FileName is the configuration file looked up in the working directory.
const FileName = ".typeenum"

// Config holds the settings of one run.
type Config struct {
	Strategy    string        `mapstructure:"strategy" validate:"omitempty,oneof=per-field whole-tuple"`
	Output      string        `mapstructure:"output" validate:"required,gofile"`
	Colocated   bool          `mapstructure:"colocated"`
	Suffix      string        `mapstructure:"suffix" validate:"required,gofile"`
	Tags        string        `mapstructure:"tags"`
	Tests       bool          `mapstructure:"tests"`
	Check       bool          `mapstructure:"check"`
	Watch       bool          `mapstructure:"watch"`
	Debounce    time.Duration `mapstructure:"debounce" validate:"gte=0"`
	Parallelism int           `mapstructure:"parallelism" validate:"gte=0"`
	Verbose     bool          `mapstructure:"verbose"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("strategy", string(generator.DefaultStrategy))
	v.SetDefault("output", generator.DefaultOutput)
	v.SetDefault("colocated", false)
	v.SetDefault("suffix", generator.DefaultSuffix)
	v.SetDefault("tags", "")
	v.SetDefault("tests", false)
	v.SetDefault("check", false)
	v.SetDefault("watch", false)
	v.SetDefault("debounce", 200*time.Millisecond)
	v.SetDefault("parallelism", 0) // GOMAXPROCS
	v.SetDefault("verbose", false)
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// BindFlags makes flags override every other source. Flag names are the
// configuration keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || err != nil {
			return
		}
		err = v.BindPFlag(f.Name, f)
	})
	return errors.Wrap(err, "failed to bind flags")
}

// Load reads the configuration file, if any, and returns the validated
// configuration. An explicit path must exist; otherwise .typeenum.yaml is
// looked up in dir and its absence is not an error.
func Load(v *viper.Viper, path, dir string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := validator.Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GeneratorOptions returns the output settings for the generator.
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		Output:    c.Output,
		Colocated: c.Colocated,
		Suffix:    c.Suffix,
	}
}

// DefaultStrategy returns the strategy used for unions whose directive does
// not pick one.
func (c *Config) DefaultStrategy() generator.Strategy {
	return generator.Strategy(c.Strategy)
}
