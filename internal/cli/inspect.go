package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloud-assembly/cxschema/internal/config"
	"github.com/cloud-assembly/cxschema/internal/manifest"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	inspectFlags  loadFlags
	inspectOutput string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <manifest>",
	Short: "List the artifacts of a cloud assembly manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectFlags.register(inspectCmd, false)
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "Output format (table, json, yaml); defaults to output.format")
	rootCmd.AddCommand(inspectCmd)
}

// inspectEntry summarizes one artifact for display.
type inspectEntry struct {
	ID          string         `json:"id" yaml:"id"`
	Type        string         `json:"type" yaml:"type"`
	Environment string         `json:"environment,omitempty" yaml:"environment,omitempty"`
	Metadata    int            `json:"metadata" yaml:"metadata"`
	Tags        []manifest.Tag `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// inspectReport is the full inspect output.
type inspectReport struct {
	Path      string         `json:"path" yaml:"path"`
	Version   string         `json:"version" yaml:"version"`
	Artifacts []inspectEntry `json:"artifacts" yaml:"artifacts"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	doc, err := manifest.LoadAssemblyManifest(path, inspectFlags.options()...)
	if err != nil {
		return explainLoadError(cmd.ErrOrStderr(), path, err)
	}

	report := buildInspectReport(path, doc)

	format := inspectOutput
	if format == "" {
		format = config.Get(config.KeyOutputFormat)
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		printInspectTable(cmd.OutOrStdout(), report)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table, json, or yaml)", format)
	}
}

func buildInspectReport(path string, doc manifest.Document) inspectReport {
	version, _ := doc["version"].(string)
	report := inspectReport{Path: path, Version: version, Artifacts: []inspectEntry{}}
	for _, a := range manifest.Artifacts(doc) {
		report.Artifacts = append(report.Artifacts, inspectEntry{
			ID:          a.ID,
			Type:        string(a.Type),
			Environment: a.Environment,
			Metadata:    a.MetadataCount(),
			Tags:        a.StackTags(),
		})
	}
	return report
}

func printInspectTable(w io.Writer, report inspectReport) {
	fmt.Fprintf(w, "%s (schema version %s)\n", report.Path, report.Version)
	if len(report.Artifacts) == 0 {
		fmt.Fprintln(w, "No artifacts.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "TYPE", "ENVIRONMENT", "METADATA", "TAGS"})
	for _, a := range report.Artifacts {
		env := a.Environment
		if env == "" {
			env = "-"
		}
		tags := make([]string, 0, len(a.Tags))
		for _, t := range a.Tags {
			tags = append(tags, t.Key+"="+t.Value)
		}
		tw.AppendRow(table.Row{a.ID, a.Type, env, a.Metadata, strings.Join(tags, ", ")})
	}
	tw.Render()
}
