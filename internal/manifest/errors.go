package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloud-assembly/cxschema/internal/schema"
	"github.com/cloud-assembly/cxschema/internal/version"
)

// VersionMismatchMarker prefixes every error reporting a document written by
// a newer producer than this build supports. Tools match on it to tell users
// to upgrade.
const VersionMismatchMarker = "Cloud assembly schema version mismatch"

var (
	ErrMalformedInput         = errors.New("malformed manifest")
	ErrInvalidVersionFormat   = version.ErrInvalidFormat
	ErrVersionMismatch        = errors.New(VersionMismatchMarker)
	ErrSchemaValidationFailed = errors.New("schema validation failed")
)

// ValidationError lists every schema violation found in a loaded document.
type ValidationError struct {
	Kind   Kind
	Path   string
	Issues []schema.Issue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: invalid %s manifest %s:", ErrSchemaValidationFailed, e.Kind.Description(), e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(issue.String())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrSchemaValidationFailed
}

// IsVersionMismatch reports whether err signals a document newer than this
// build supports. It also recognizes errors that only carry the marker text,
// such as ones relayed from another process.
func IsVersionMismatch(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrVersionMismatch) || strings.HasPrefix(err.Error(), VersionMismatchMarker)
}
