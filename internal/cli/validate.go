package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cloud-assembly/cxschema/internal/config"
	"github.com/cloud-assembly/cxschema/internal/manifest"
	"github.com/cloud-assembly/cxschema/internal/printer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	validateFlags loadFlags
	validateJSON  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <path|glob>...",
	Short: "Validate manifests against the supported schema",
	Long: `Load every matching manifest, rewrite legacy encodings, check its schema version
against the version this build supports, and validate it against the embedded schema.
Patterns support ** (e.g. 'cdk.out/**/manifest.json').`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateFlags.register(validateCmd, true)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(validateCmd)
}

// validateResult is the outcome of loading one file.
type validateResult struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`

	err error
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, err := validateFlags.parseKind()
	if err != nil {
		return err
	}
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	results := validateFiles(kind, paths, config.GetInt(config.KeyValidateConcurrency), validateFlags.options())

	failed := 0
	for _, r := range results {
		if !r.Valid {
			failed++
		}
	}

	if validateJSON {
		if err := printValidateJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		printValidateTable(cmd.OutOrStdout(), results)
		for _, r := range results {
			if r.err != nil {
				_ = explainLoadError(cmd.ErrOrStderr(), r.Path, r.err)
			}
		}
		if failed == 0 {
			printer.Success(cmd.OutOrStdout(), "%d %s manifest(s) valid", len(results), kind.Description())
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manifest(s) failed validation", failed, len(results))
	}
	return nil
}

// expandPaths resolves glob patterns and returns the unique paths in
// argument order. Literal paths are kept even if they do not exist so the
// load reports the error.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

// validateFiles loads every path concurrently. Loads share no state, so the
// only bound is the configured concurrency.
func validateFiles(kind manifest.Kind, paths []string, concurrency int, opts []manifest.Option) []validateResult {
	log := appLog.With(zap.String("component", "validate"))
	results := make([]validateResult, len(paths))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			doc, err := manifest.Load(kind, path, opts...)
			r := validateResult{Path: path, Valid: err == nil, err: err}
			if err != nil {
				r.Error = err.Error()
				log.Debug("manifest rejected", zap.String("path", path), zap.Error(err))
			} else {
				r.Version, _ = doc["version"].(string)
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printValidateTable(w io.Writer, results []validateResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"FILE", "VERSION", "RESULT"})
	for _, r := range results {
		version := r.Version
		if version == "" {
			version = "-"
		}
		status := "valid"
		if !r.Valid {
			status = failureLabel(r.err)
		}
		tw.AppendRow(table.Row{r.Path, version, status})
	}
	tw.Render()
}

func failureLabel(err error) string {
	switch {
	case manifest.IsVersionMismatch(err):
		return "newer schema"
	case errors.Is(err, manifest.ErrSchemaValidationFailed):
		return "schema violation"
	case errors.Is(err, manifest.ErrInvalidVersionFormat):
		return "bad version"
	case errors.Is(err, manifest.ErrMalformedInput):
		return "malformed"
	default:
		return "unreadable"
	}
}

func printValidateJSON(w io.Writer, results []validateResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
