package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/reposync/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultEnvPrefix prefixes environment overrides. "__" separates nesting
// levels: REPOSYNC_GIT__NO_VERIFY=true sets git.no_verify.
const DefaultEnvPrefix = "REPOSYNC_"

// candidate names tried in the working directory when no path is given
var defaultFileNames = []string{DefaultFileName, ".reposync.yaml", ".reposync.yml"}

// listKeys are split on commas when set from the environment
var listKeys = map[string]bool{
	"include":      true,
	"exclude":      true,
	"ignore_files": true,
	"rm_before":    true,
	"hooks.before": true,
	"hooks.after":  true,
}

// defaultValues is the parsed form of the embedded defaults
var defaultValues = mustParseDefaults()

func mustParseDefaults() map[string]interface{} {
	values, err := toml.Parser().Unmarshal(defaultConfig)
	if err != nil {
		panic(err)
	}
	return values
}

// LoadOptions selects where configuration is read from
type LoadOptions struct {
	// Path is an explicit config file, relative to Dir when not absolute
	Path string
	// Dir is the directory searched for the default file names
	Dir string
	// EnvPrefix overrides DefaultEnvPrefix; "-" disables environment loading
	EnvPrefix string
}

// Load returns the layered configuration. It never fails: a missing or
// invalid file falls back to the defaults.
func Load(opts LoadOptions) *Config {
	logger := logging.GetLogger("config")

	path := resolvePath(opts)
	k, err := layered(path, opts.EnvPrefix)
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("Ignoring configuration, using defaults")
		path = ""
		k, err = layered("", "-")
		if err != nil {
			// embedded defaults are part of the binary
			panic(err)
		}
	}

	cfg, err := decode(k)
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("Invalid configuration values, using defaults")
		path = ""
		k, _ = layered("", "-")
		if cfg, err = decode(k); err != nil {
			panic(err)
		}
	}
	cfg.File = path

	logger.Debug().Str("file", path).Msg("Configuration loaded")
	return cfg
}

// Defaults returns the built-in configuration without any file or environment layer
func Defaults() *Config {
	k, err := layered("", "-")
	if err != nil {
		panic(err)
	}
	cfg, err := decode(k)
	if err != nil {
		panic(err)
	}
	return cfg
}

func resolvePath(opts LoadOptions) string {
	logger := logging.GetLogger("config")

	if opts.Path != "" {
		path := opts.Path
		if !filepath.IsAbs(path) && opts.Dir != "" {
			path = filepath.Join(opts.Dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			logger.Debug().Err(err).Str("file", path).Msg("Config file not found")
			return ""
		}
		return path
	}

	for _, name := range defaultFileNames {
		path := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	logger.Debug().Str("dir", opts.Dir).Msg("No config file found")
	return ""
}

func layered(path, envPrefix string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues, "."), nil); err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, err
		}
	}

	if envPrefix == "-" {
		return k, nil
	}
	if envPrefix == "" {
		envPrefix = DefaultEnvPrefix
	}
	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, err
	}
	return &cfg, nil
}
