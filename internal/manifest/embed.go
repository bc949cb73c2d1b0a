package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed schema/version.json
var versionFile []byte

//go:embed schema/cloud-assembly.schema.json
var assemblyGrammar []byte

//go:embed schema/assets.schema.json
var assetsGrammar []byte

//go:embed schema/integ.schema.json
var integGrammar []byte

// protocols compiles each kind's protocol on first use. The results are
// read-only afterwards and shared by concurrent callers.
var protocols = map[Kind]func() (*Protocol, error){
	KindAssembly: sync.OnceValues(func() (*Protocol, error) {
		return newEmbeddedProtocol(KindAssembly, assemblyGrammar, normalizeStackTags)
	}),
	KindAssets: sync.OnceValues(func() (*Protocol, error) {
		return newEmbeddedProtocol(KindAssets, assetsGrammar, nil)
	}),
	KindInteg: sync.OnceValues(func() (*Protocol, error) {
		return newEmbeddedProtocol(KindInteg, integGrammar, nil)
	}),
}

func newEmbeddedProtocol(kind Kind, grammar []byte, normalize normalizer) (*Protocol, error) {
	current, err := embeddedVersion()
	if err != nil {
		return nil, err
	}
	return newProtocol(kind, grammar, current, normalize)
}

// embeddedVersion returns the version string recorded in schema/version.json.
func embeddedVersion() (string, error) {
	var file struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(versionFile, &file); err != nil {
		return "", fmt.Errorf("%w: reading embedded schema version: %w", ErrInvalidVersionFormat, err)
	}
	return file.Version, nil
}

func protocolFor(kind Kind) (*Protocol, error) {
	get, ok := protocols[kind]
	if !ok {
		return nil, fmt.Errorf("unknown manifest kind %q", kind)
	}
	return get()
}

// Version returns the schema version this build writes and the maximum
// version it accepts on load.
func Version() string {
	v, err := embeddedVersion()
	if err != nil {
		return ""
	}
	return v
}

// Grammar returns the embedded JSON schema for kind.
func Grammar(kind Kind) ([]byte, error) {
	switch kind {
	case KindAssembly:
		return assemblyGrammar, nil
	case KindAssets:
		return assetsGrammar, nil
	case KindInteg:
		return integGrammar, nil
	default:
		return nil, fmt.Errorf("unknown manifest kind %q", kind)
	}
}
