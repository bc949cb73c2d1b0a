//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to an isolated synthesis output.
type testEnv struct {
	HomeDir   string // CXSCHEMA_HOME
	OutDir    string // A mock cdk.out directory
	NestedDir string // A nested assembly inside OutDir
}

// setupTestEnv creates isolated temp directories and points CXSCHEMA_HOME at
// one of them so no user config leaks into the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir: t.TempDir(),
		OutDir:  t.TempDir(),
	}
	env.NestedDir = filepath.Join(env.OutDir, "assembly-Stage")
	t.Setenv("CXSCHEMA_HOME", env.HomeDir)

	if err := os.MkdirAll(env.NestedDir, 0755); err != nil {
		t.Fatalf("creating nested assembly: %v", err)
	}
	return env
}

// setupAssembly writes a synthetic cloud assembly: a top-level manifest in
// legacy tag form, its asset manifest, an integ manifest, and a nested stage.
func setupAssembly(t *testing.T, env *testEnv) {
	t.Helper()

	writeFile(t, filepath.Join(env.OutDir, "manifest.json"), `{
  "version": "36.0.0",
  "artifacts": {
    "AppStack": {
      "type": "aws:cloudformation:stack",
      "environment": "aws://unknown-account/unknown-region",
      "metadata": {
        "/AppStack": [
          {"type": "aws:cdk:stack-tags", "data": [{"Key": "team", "Value": "platform"}, {"Key": "env", "Value": "dev"}]}
        ],
        "/AppStack/Bucket/Resource": [
          {"type": "aws:cdk:logicalId", "data": "Bucket83908E77", "trace": ["new Bucket"]}
        ]
      }
    },
    "AppStack.assets": {"type": "cdk:asset-manifest"},
    "assembly-Stage": {"type": "cdk:cloud-assembly", "displayName": "Stage"},
    "Tree": {"type": "cdk:tree"}
  },
  "runtime": {"libraries": {"aws-cdk-lib": "2.100.0"}}
}`)

	writeFile(t, filepath.Join(env.OutDir, "AppStack.assets.json"), `{
  "version": "36.0.0",
  "files": {
    "a1b2c3": {
      "source": {"path": "AppStack.template.json", "packaging": "file"},
      "destinations": {
        "current_account-current_region": {
          "bucketName": "cdk-assets",
          "objectKey": "a1b2c3.json"
        }
      }
    }
  }
}`)

	writeFile(t, filepath.Join(env.OutDir, "integ.json"), `{
  "version": "36.0.0",
  "testCases": {
    "AppTest/DefaultTest": {"stacks": ["AppStack"]}
  }
}`)

	writeFile(t, filepath.Join(env.NestedDir, "manifest.json"), `{
  "version": "36.0.0",
  "artifacts": {
    "StageStack": {"type": "aws:cloudformation:stack"}
  }
}`)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}

// assertFileNotContains fails if the file contains substr.
func assertFileNotContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if strings.Contains(string(data), substr) {
		t.Errorf("file %s unexpectedly contains %q.\nContents:\n%s", path, substr, string(data))
	}
}
