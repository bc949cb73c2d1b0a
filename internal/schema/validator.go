package schema

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Grammar is a compiled, read-only JSON Schema.
type Grammar struct {
	name     string
	compiled *jsonschema.Schema
}

// Result contains the outcome of a schema validation.
type Result struct {
	Valid  bool
	Issues []Issue
}

// Issue represents a single violation found during validation.
type Issue struct {
	Path    string // Instance location (e.g., "/artifacts/Stack/type")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// Compile parses and compiles a JSON Schema grammar. The name identifies the
// grammar in error messages and as its resource URL.
func Compile(name string, grammar []byte) (*Grammar, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(grammar))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource %s: %w", name, err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &Grammar{name: name, compiled: compiled}, nil
}

// Name returns the name the grammar was compiled under.
func (g *Grammar) Name() string {
	return g.name
}

// Validate checks doc against the grammar. doc must hold JSON-compatible
// values, as produced by jsonschema.UnmarshalJSON or encoding/json. It is not
// modified. The error return is reserved for failures of the validator
// itself; violations are reported in the Result.
func (g *Grammar) Validate(doc any) (*Result, error) {
	err := g.compiled.Validate(doc)
	if err == nil {
		return &Result{Valid: true}, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating against %s: %w", g.name, err)
	}

	return &Result{
		Valid:  false,
		Issues: extractIssues(ve),
	}, nil
}

// Without returns a copy of r with every issue raised by keyword removed.
func (r *Result) Without(keyword string) *Result {
	var kept []Issue
	for _, issue := range r.Issues {
		if issue.Keyword != keyword {
			kept = append(kept, issue)
		}
	}
	return &Result{Valid: len(kept) == 0, Issues: kept}
}

// Error renders all issues, one per line.
func (r *Result) Error() string {
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, issue.String())
	}
	return strings.Join(lines, "\n")
}

// extractIssues walks the ValidationError tree and returns leaf-level issues
// in a stable order.
func extractIssues(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	collectIssues(ve, &issues)

	if len(issues) == 0 {
		return []Issue{{
			Path:    "/",
			Message: ve.Error(),
		}}
	}

	issues = deduplicateIssues(issues)
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		if issues[i].Keyword != issues[j].Keyword {
			return issues[i].Keyword < issues[j].Keyword
		}
		return issues[i].Message < issues[j].Message
	})
	return issues
}

// collectIssues recursively walks the error tree to find leaf errors.
func collectIssues(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}

	keyword := ""
	if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
		keyword = kwPath[len(kwPath)-1]
	}

	// Skip generic container errors that aren't informative.
	if keyword == "oneOf" || keyword == "anyOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
		return
	}

	base := pointer(ve.InstanceLocation)
	msg := ve.ErrorKind.LocalizedString(printer)

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			*issues = append(*issues, Issue{
				Path:    join(base, missing),
				Message: fmt.Sprintf("missing required property %q", missing),
				Keyword: keyword,
			})
		}
	case *kind.AdditionalProperties:
		for _, extra := range k.Properties {
			*issues = append(*issues, Issue{
				Path:    join(base, extra),
				Message: fmt.Sprintf("property %q is not allowed", extra),
				Keyword: keyword,
			})
		}
	default:
		*issues = append(*issues, Issue{
			Path:    base,
			Message: msg,
			Keyword: keyword,
		})
	}
}

// pointer renders an instance location as a JSON pointer, "/" for the root.
func pointer(location []string) string {
	if len(location) == 0 {
		return "/"
	}
	escaped := make([]string, len(location))
	for i, tok := range location {
		escaped[i] = escapeToken(tok)
	}
	return "/" + strings.Join(escaped, "/")
}

func join(base, token string) string {
	if base == "/" {
		return "/" + escapeToken(token)
	}
	return base + "/" + escapeToken(token)
}

func escapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	return strings.ReplaceAll(tok, "/", "~1")
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []Issue) []Issue {
	seen := make(map[string]bool)
	var result []Issue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
