package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cloud-assembly/cxschema/internal/branding"
	"github.com/cloud-assembly/cxschema/internal/logger"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyLogLevel              = "log.level"
	KeyLogFile               = "log.file"
	KeyLogMaxSize            = "log.max-size"
	KeyLogMaxBackups         = "log.max-backups"
	KeyValidateConcurrency   = "validate.concurrency"
	KeyValidateSkipEnumCheck = "validate.skip-enum-check"
	KeyOutputFormat          = "output.format"
)

var defaults = map[string]any{
	KeyLogLevel:              "warn",
	KeyLogFile:               "",
	KeyLogMaxSize:            100,
	KeyLogMaxBackups:         3,
	KeyValidateConcurrency:   8,
	KeyValidateSkipEnumCheck: false,
	KeyOutputFormat:          "table",
}

// Keys returns every recognized key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Dir returns the path to the config directory. CXSCHEMA_HOME overrides the
// default of ~/.cxschema/.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("home")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetInt returns a config value as an int.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a config value as a bool.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Logging returns the logger settings.
func Logging() logger.Config {
	return logger.Config{
		Level:      Get(KeyLogLevel),
		File:       Get(KeyLogFile),
		MaxSize:    GetInt(KeyLogMaxSize),
		MaxBackups: GetInt(KeyLogMaxBackups),
	}
}
