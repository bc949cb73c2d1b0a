package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Document is a decoded manifest: a JSON object whose shape is governed by
// the schema of its Kind, plus the protocol-owned "version" field.
type Document map[string]any

const (
	versionKey   = "version"
	artifactsKey = "artifacts"
	metadataKey  = "metadata"
	typeKey      = "type"
	dataKey      = "data"
)

// Kind identifies a manifest document kind. Each kind has its own schema.
type Kind string

const (
	KindAssembly Kind = "assembly"
	KindAssets   Kind = "assets"
	KindInteg    Kind = "integ"
)

// Kinds contains all supported document kinds.
var Kinds = []Kind{KindAssembly, KindAssets, KindInteg}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown manifest kind %q (expected one of: assembly, assets, integ)", s)
}

// Description returns a human-readable name for the kind.
func (k Kind) Description() string {
	switch k {
	case KindAssembly:
		return "cloud assembly"
	case KindAssets:
		return "asset"
	case KindInteg:
		return "integ"
	default:
		return string(k)
	}
}

// ArtifactType is the discriminator of an artifact.
type ArtifactType string

const (
	ArtifactTypeNone                ArtifactType = "none"
	ArtifactTypeCloudFormationStack ArtifactType = "aws:cloudformation:stack"
	ArtifactTypeTree                ArtifactType = "cdk:tree"
	ArtifactTypeAssetManifest       ArtifactType = "cdk:asset-manifest"
	ArtifactTypeNestedAssembly      ArtifactType = "cdk:cloud-assembly"
)

// MetadataType is the discriminator of a metadata entry.
type MetadataType string

const (
	MetadataTypeAsset     MetadataType = "aws:cdk:asset"
	MetadataTypeInfo      MetadataType = "aws:cdk:info"
	MetadataTypeWarning   MetadataType = "aws:cdk:warning"
	MetadataTypeError     MetadataType = "aws:cdk:error"
	MetadataTypeLogicalID MetadataType = "aws:cdk:logicalId"
	MetadataTypeStackTags MetadataType = "aws:cdk:stack-tags"
)

// Tag is a canonical stack tag.
type Tag struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Artifact is a read-only typed view of one entry of a manifest's artifacts.
type Artifact struct {
	ID          string
	Type        ArtifactType
	Environment string
	Metadata    map[string][]MetadataEntry
}

// MetadataEntry is a typed view of one metadata entry.
type MetadataEntry struct {
	Type  MetadataType
	Data  any
	Trace []string
}

// Artifacts returns typed views of the document's artifacts sorted by id.
// Entries that are not JSON objects are skipped.
func Artifacts(doc Document) []Artifact {
	raw, ok := doc[artifactsKey].(map[string]any)
	if !ok {
		return nil
	}

	artifacts := make([]Artifact, 0, len(raw))
	for id, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		a := Artifact{
			ID:   id,
			Type: ArtifactType(stringField(obj, typeKey)),
		}
		a.Environment = stringField(obj, "environment")
		if md, ok := obj[metadataKey].(map[string]any); ok {
			a.Metadata = make(map[string][]MetadataEntry, len(md))
			for path, entries := range md {
				list, _ := entries.([]any)
				for _, e := range list {
					entry, ok := e.(map[string]any)
					if !ok {
						continue
					}
					a.Metadata[path] = append(a.Metadata[path], MetadataEntry{
						Type:  MetadataType(stringField(entry, typeKey)),
						Data:  entry[dataKey],
						Trace: stringSlice(entry["trace"]),
					})
				}
			}
		}
		artifacts = append(artifacts, a)
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].ID < artifacts[j].ID })
	return artifacts
}

// StackTags returns the canonical tags recorded in the artifact's stack-tags
// metadata, ordered by construct path and then by position.
func (a Artifact) StackTags() []Tag {
	paths := make([]string, 0, len(a.Metadata))
	for p := range a.Metadata {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var tags []Tag
	for _, p := range paths {
		for _, entry := range a.Metadata[p] {
			if entry.Type != MetadataTypeStackTags {
				continue
			}
			list, _ := entry.Data.([]any)
			for _, t := range list {
				obj, ok := t.(map[string]any)
				if !ok {
					continue
				}
				tags = append(tags, Tag{Key: stringField(obj, "key"), Value: stringField(obj, "value")})
			}
		}
	}
	return tags
}

// MetadataCount returns the total number of metadata entries.
func (a Artifact) MetadataCount() int {
	n := 0
	for _, entries := range a.Metadata {
		n += len(entries)
	}
	return n
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
