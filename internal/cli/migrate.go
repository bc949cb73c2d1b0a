package cli

import (
	"github.com/cloud-assembly/cxschema/internal/manifest"
	"github.com/cloud-assembly/cxschema/internal/printer"
	"github.com/cloud-assembly/cxschema/internal/version"
	"github.com/spf13/cobra"
)

var (
	migrateFlags loadFlags
	migrateOut   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <manifest>",
	Short: "Rewrite a manifest in the current schema version",
	Long: `Load a manifest (rewriting legacy stack tags into their canonical shape) and save it
again stamped with the schema version of this build. The file is replaced unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateFlags.register(migrateCmd, true)
	migrateCmd.Flags().StringVarP(&migrateOut, "out", "o", "", "Write the migrated manifest to this path instead")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	src := args[0]
	kind, err := migrateFlags.parseKind()
	if err != nil {
		return err
	}

	opts := migrateFlags.options()
	doc, err := manifest.Load(kind, src, opts...)
	if err != nil {
		return explainLoadError(cmd.ErrOrStderr(), src, err)
	}
	from, _ := doc["version"].(string)
	if cmp, err := version.Compare(from, manifest.Version()); err == nil && cmp > 0 {
		printer.Warning(cmd.ErrOrStderr(), "%s was written for schema %s; saving stamps it down to %s", src, from, manifest.Version())
	}

	dst := src
	if migrateOut != "" {
		dst = migrateOut
	}
	if err := manifest.Save(kind, doc, dst, opts...); err != nil {
		return err
	}

	printer.Success(cmd.OutOrStdout(), "Migrated %s manifest %s from schema %s to %s", kind.Description(), dst, from, manifest.Version())
	return nil
}
