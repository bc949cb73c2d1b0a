//go:build integration

package integration_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloud-assembly/cxschema/internal/manifest"
)

// TestFullFlowLoadMigrateReload tests the complete flow:
// load every manifest in an assembly -> save it in the current schema -> reload.
func TestFullFlowLoadMigrateReload(t *testing.T) {
	env := setupTestEnv(t)
	setupAssembly(t, env)

	files := []struct {
		kind manifest.Kind
		path string
	}{
		{manifest.KindAssembly, filepath.Join(env.OutDir, "manifest.json")},
		{manifest.KindAssets, filepath.Join(env.OutDir, "AppStack.assets.json")},
		{manifest.KindInteg, filepath.Join(env.OutDir, "integ.json")},
		{manifest.KindAssembly, filepath.Join(env.NestedDir, "manifest.json")},
	}

	// Step 1: Every manifest loads under the embedded schemas.
	docs := make([]manifest.Document, len(files))
	for i, f := range files {
		doc, err := manifest.Load(f.kind, f.path)
		if err != nil {
			t.Fatalf("Load(%s, %s): %v", f.kind, f.path, err)
		}
		docs[i] = doc
	}

	// Step 2: Legacy tags were rewritten on load.
	artifacts := manifest.Artifacts(docs[0])
	if len(artifacts) != 4 {
		t.Fatalf("expected 4 artifacts, got %d", len(artifacts))
	}
	tags := artifacts[0].StackTags()
	want := []manifest.Tag{{Key: "team", Value: "platform"}, {Key: "env", Value: "dev"}}
	if len(tags) != len(want) {
		t.Fatalf("StackTags() = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d = %v, want %v", i, tags[i], want[i])
		}
	}

	// Step 3: Save every manifest in place.
	for i, f := range files {
		if err := manifest.Save(f.kind, docs[i], f.path); err != nil {
			t.Fatalf("Save(%s): %v", f.path, err)
		}
		assertFileContains(t, f.path, `"version": "`+manifest.Version()+`"`)
	}
	assertFileContains(t, files[0].path, `"key": "team"`)
	assertFileNotContains(t, files[0].path, `"Key"`)

	// Step 4: Migrated files reload with the current version.
	for _, f := range files {
		doc, err := manifest.Load(f.kind, f.path)
		if err != nil {
			t.Fatalf("reloading %s: %v", f.path, err)
		}
		if got := doc["version"]; got != manifest.Version() {
			t.Errorf("%s version = %v, want %s", f.path, got, manifest.Version())
		}
	}
}

// TestNewerAssemblyRejected tests that a manifest from a future schema is
// refused unless the version check is skipped.
func TestNewerAssemblyRejected(t *testing.T) {
	env := setupTestEnv(t)
	path := filepath.Join(env.OutDir, "manifest.json")
	writeFile(t, path, `{"version": "999.0.0", "artifacts": {"Stack": {"type": "aws:cloudformation:stack"}}}`)

	_, err := manifest.LoadAssemblyManifest(path)
	if !errors.Is(err, manifest.ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
	if !manifest.IsVersionMismatch(err) {
		t.Errorf("IsVersionMismatch(%v) = false", err)
	}

	if _, err := manifest.LoadAssemblyManifest(path, manifest.SkipVersionCheck()); err != nil {
		t.Fatalf("load with version check skipped: %v", err)
	}
}

// TestUnknownArtifactTypeTolerated tests that a newer artifact type is only
// accepted when enum checks are skipped.
func TestUnknownArtifactTypeTolerated(t *testing.T) {
	env := setupTestEnv(t)
	path := filepath.Join(env.OutDir, "manifest.json")
	writeFile(t, path, `{"version": "36.0.0", "artifacts": {"Fut": {"type": "cdk:future-thing"}}}`)

	_, err := manifest.LoadAssemblyManifest(path)
	var verr *manifest.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Issues) != 1 || verr.Issues[0].Path != "/artifacts/Fut/type" {
		t.Errorf("unexpected issues: %v", verr.Issues)
	}

	if _, err := manifest.LoadAssemblyManifest(path, manifest.SkipEnumCheck()); err != nil {
		t.Fatalf("load with enum check skipped: %v", err)
	}
}

// TestMigrateLeavesSourceOnFailure tests that a rejected manifest is never rewritten.
func TestMigrateLeavesSourceOnFailure(t *testing.T) {
	env := setupTestEnv(t)
	path := filepath.Join(env.OutDir, "manifest.json")
	original := `{"version": "36.0.0", "bogus": true}`
	writeFile(t, path, original)

	if _, err := manifest.LoadAssemblyManifest(path); !errors.Is(err, manifest.ErrSchemaValidationFailed) {
		t.Fatalf("expected schema failure, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(data) != original {
		t.Errorf("source changed after failed load:\n%s", data)
	}
}
