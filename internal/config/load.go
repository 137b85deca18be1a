package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/errors"
)

// newViperInstance creates a viper instance with standard sdlc
// configuration: defaults, the SDLC_ env prefix, and key replacement so
// SDLC_GATES_DEFAULT_TIMEOUT_SECONDS addresses gates.default_timeout_seconds.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError reports whether err is viper's missing-config
// error, which is expected and non-fatal.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// viperDecoderOption wires the mapstructure hooks viper needs to decode
// typed fields (gate kinds, string slices) from YAML and env strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Load reads configuration for the project rooted at root, layering
// environment over .sdlc/config.yaml over built-in defaults. A missing
// config file is not an error; defaults apply.
func Load(root string) (*Config, error) {
	v := newViperInstance()

	path := filepath.Join(root, constants.ProjectDir, constants.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read project config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Gate lists are too structured for viper defaults; fall back to
	// the built-in table when the project configures none.
	if cfg.Gates.PerAction == nil {
		cfg.Gates.PerAction = DefaultConfig().Gates.PerAction
	}

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}
