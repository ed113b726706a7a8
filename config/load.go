package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. INVADERS_ROWS
const EnvPrefix = "INVADERS"

// DefaultEnvFile is read when present and no other env file is named
const DefaultEnvFile = ".env"

// keys lists every mapstructure key of Config, in field order
var keys = func() []string {
	t := reflect.TypeOf(Config{})
	out := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		out = append(out, t.Field(i).Tag.Get("mapstructure"))
	}
	return out
}()

// FlagName maps a config key to its command line flag
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Sources names the optional files feeding Load
type Sources struct {
	File    string // YAML, TOML or JSON, by extension
	EnvFile string // dotenv file; empty tries DefaultEnvFile
}

// Load resolves a Config
// Precedence: changed flags, environment, env file, config file, flag defaults
func Load(flags *pflag.FlagSet, src Sources) (Config, error) {
	if err := loadEnvFile(src.EnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	for k, val := range defaultValues() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if src.File != "" {
		v.SetConfigFile(src.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalid, src.File, err)
		}
	}

	if flags != nil {
		for _, k := range keys {
			if f := flags.Lookup(FlagName(k)); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return Config{}, fmt.Errorf("%w: bind --%s: %w", ErrInvalid, f.Name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: decode: %w", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// loadEnvFile seeds the process environment without overriding variables already set
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: env file %s: %w", ErrInvalid, path, err)
	}
	return nil
}

// defaultValues flattens Defaults into key/value pairs by mapstructure tag
func defaultValues() map[string]any {
	rv := reflect.ValueOf(Defaults())
	out := make(map[string]any, len(keys))
	for i, k := range keys {
		out[k] = rv.Field(i).Interface()
	}
	return out
}
