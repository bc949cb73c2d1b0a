package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CXSCHEMA_HOME", dir)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return dir
}

func TestDir_HonorsHomeOverride(t *testing.T) {
	dir := setupHome(t)
	if Dir() != dir {
		t.Errorf("Dir() = %q, want %q", Dir(), dir)
	}
	if FilePath() != filepath.Join(dir, "config.yaml") {
		t.Errorf("FilePath() = %q", FilePath())
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupHome(t)
	Load()

	if got := Get(KeyLogLevel); got != "warn" {
		t.Errorf("log.level = %q, want %q", got, "warn")
	}
	if got := GetInt(KeyValidateConcurrency); got != 8 {
		t.Errorf("validate.concurrency = %d, want 8", got)
	}
	if GetBool(KeyValidateSkipEnumCheck) {
		t.Error("validate.skip-enum-check should default to false")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	setupHome(t)
	t.Setenv("CXSCHEMA_LOG_LEVEL", "debug")
	t.Setenv("CXSCHEMA_VALIDATE_CONCURRENCY", "2")
	Load()

	if got := Get(KeyLogLevel); got != "debug" {
		t.Errorf("log.level = %q, want %q", got, "debug")
	}
	if got := GetInt(KeyValidateConcurrency); got != 2 {
		t.Errorf("validate.concurrency = %d, want 2", got)
	}
}

func TestSet_PersistsValue(t *testing.T) {
	dir := setupHome(t)
	Load()

	if err := Set(KeyOutputFormat, "json"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("reading config file: %v", err)
	}
	if !strings.Contains(string(data), "json") {
		t.Errorf("config file missing value:\n%s", data)
	}

	viper.Reset()
	Load()
	if got := Get(KeyOutputFormat); got != "json" {
		t.Errorf("output.format after reload = %q, want %q", got, "json")
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupHome(t)
	Load()

	err := Set("no.such.key", "x")
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), KeyLogLevel) {
		t.Errorf("error should list known keys: %v", err)
	}
}

func TestLogging(t *testing.T) {
	setupHome(t)
	t.Setenv("CXSCHEMA_LOG_FILE", "/tmp/cxschema.log")
	Load()

	cfg := Logging()
	if cfg.File != "/tmp/cxschema.log" {
		t.Errorf("File = %q", cfg.File)
	}
	if cfg.MaxSize != 100 || cfg.MaxBackups != 3 {
		t.Errorf("rotation = %d/%d, want 100/3", cfg.MaxSize, cfg.MaxBackups)
	}
}
