package cli

import (
	"github.com/cloud-assembly/cxschema/internal/manifest"
	"github.com/spf13/cobra"
)

var schemaKind string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the embedded JSON schema for a manifest kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := manifest.ParseKind(schemaKind)
		if err != nil {
			return err
		}
		grammar, err := manifest.Grammar(kind)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(grammar)
		return err
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaKind, "kind", string(manifest.KindAssembly), "Manifest kind (assembly, assets, integ)")
	rootCmd.AddCommand(schemaCmd)
}
