package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/cloud-assembly/cxschema/internal/branding"
	"github.com/cloud-assembly/cxschema/internal/config"
	"github.com/cloud-assembly/cxschema/internal/logger"
	"github.com/cloud-assembly/cxschema/internal/manifest"
	"github.com/cloud-assembly/cxschema/internal/printer"
	"github.com/spf13/cobra"
)

// loadFlags are shared by every command that loads manifests.
type loadFlags struct {
	kind             string
	skipVersionCheck bool
	skipEnumCheck    bool
}

func (f *loadFlags) register(cmd *cobra.Command, withKind bool) {
	if withKind {
		cmd.Flags().StringVar(&f.kind, "kind", string(manifest.KindAssembly), "Manifest kind (assembly, assets, integ)")
	}
	cmd.Flags().BoolVar(&f.skipVersionCheck, "skip-version-check", false, "Load manifests newer than the supported schema version")
	cmd.Flags().BoolVar(&f.skipEnumCheck, "skip-enum-check", false, "Ignore unknown enum values such as new artifact types")
}

func (f *loadFlags) options() []manifest.Option {
	opts := []manifest.Option{manifest.WithLogger(logger.Component(appLog, "manifest"))}
	if f.skipVersionCheck {
		opts = append(opts, manifest.SkipVersionCheck())
	}
	if f.skipEnumCheck || config.GetBool(config.KeyValidateSkipEnumCheck) {
		opts = append(opts, manifest.SkipEnumCheck())
	}
	return opts
}

func (f *loadFlags) parseKind() (manifest.Kind, error) {
	if f.kind == "" {
		return manifest.KindAssembly, nil
	}
	return manifest.ParseKind(f.kind)
}

// explainLoadError prints a load failure with guidance and returns the error
// to hand back to cobra.
func explainLoadError(w io.Writer, path string, err error) error {
	switch {
	case manifest.IsVersionMismatch(err):
		return reported(printer.Error(w,
			fmt.Sprintf("%s was written by a newer version of the cloud assembly schema", path),
			err.Error(),
			[]string{
				fmt.Sprintf("Upgrade %s; this build supports schema versions up to %s", branding.CLIName(), manifest.Version()),
				"Re-run with --skip-version-check to load it anyway",
			}))
	case errors.Is(err, manifest.ErrSchemaValidationFailed):
		return reported(printer.Error(w, fmt.Sprintf("%s does not match the schema", path), err.Error(), nil))
	case errors.Is(err, manifest.ErrInvalidVersionFormat):
		return reported(printer.Error(w, fmt.Sprintf("%s has no valid schema version", path), err.Error(),
			[]string{`Every manifest needs a top-level "version" field holding a semantic version`}))
	default:
		return err
	}
}
