package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/cloud-assembly/cxschema/internal/branding"
	"github.com/cloud-assembly/cxschema/internal/config"
	"github.com/cloud-assembly/cxschema/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbose bool
	appLog  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` validates cloud assembly, asset, and integ manifests against the
schema version this build supports, rewrites legacy encodings, and re-stamps manifests
with the current schema version.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		cfg := config.Logging()
		if verbose {
			cfg.Level = "debug"
		}
		log, err := logger.New(cfg)
		if err != nil {
			return err
		}
		appLog = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLog.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// reportedError marks an error whose details were already printed.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}
