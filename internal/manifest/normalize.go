package manifest

import "maps"

const (
	legacyTagKey   = "Key"
	legacyTagValue = "Value"
	tagKey         = "key"
	tagValue       = "value"
)

// NormalizeStackTags returns doc with every legacy stack tag ({"Key", "Value"})
// of a CloudFormation stack artifact rewritten to the canonical {"key", "value"}
// shape. Element order and unrelated fields are preserved. doc itself is never
// modified: rewritten containers are copies and untouched subtrees are shared.
//
// A tag is considered legacy when it carries a "Key" or "Value" field, so the
// transform is idempotent and safe to run on canonical documents.
func NormalizeStackTags(doc Document) Document {
	out, _ := normalizeStackTags(doc)
	return out
}

// normalizeStackTags also returns the number of tags rewritten.
func normalizeStackTags(doc Document) (Document, int) {
	artifacts, ok := doc[artifactsKey].(map[string]any)
	if !ok {
		return doc, 0
	}

	var patched map[string]any
	total := 0
	for id, raw := range artifacts {
		artifact, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		normalized, n := normalizeArtifact(artifact)
		if n == 0 {
			continue
		}
		if patched == nil {
			patched = maps.Clone(artifacts)
		}
		patched[id] = normalized
		total += n
	}
	if patched == nil {
		return doc, 0
	}

	out := maps.Clone(doc)
	out[artifactsKey] = patched
	return out, total
}

func normalizeArtifact(artifact map[string]any) (map[string]any, int) {
	t, _ := artifact[typeKey].(string)
	switch ArtifactType(t) {
	case ArtifactTypeCloudFormationStack:
		return normalizeStackMetadata(artifact)
	case ArtifactTypeNone, ArtifactTypeTree, ArtifactTypeAssetManifest, ArtifactTypeNestedAssembly:
		return artifact, 0
	default:
		return artifact, 0
	}
}

func normalizeStackMetadata(artifact map[string]any) (map[string]any, int) {
	metadata, ok := artifact[metadataKey].(map[string]any)
	if !ok {
		return artifact, 0
	}

	var patched map[string]any
	total := 0
	for path, raw := range metadata {
		entries, ok := raw.([]any)
		if !ok {
			continue
		}
		normalized, n := normalizeEntries(entries)
		if n == 0 {
			continue
		}
		if patched == nil {
			patched = maps.Clone(metadata)
		}
		patched[path] = normalized
		total += n
	}
	if patched == nil {
		return artifact, 0
	}

	out := maps.Clone(artifact)
	out[metadataKey] = patched
	return out, total
}

func normalizeEntries(entries []any) ([]any, int) {
	var patched []any
	total := 0
	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		normalized, n := normalizeEntry(entry)
		if n == 0 {
			continue
		}
		if patched == nil {
			patched = append([]any(nil), entries...)
		}
		patched[i] = normalized
		total += n
	}
	if patched == nil {
		return entries, 0
	}
	return patched, total
}

func normalizeEntry(entry map[string]any) (map[string]any, int) {
	t, _ := entry[typeKey].(string)
	if MetadataType(t) != MetadataTypeStackTags {
		return entry, 0
	}
	tags, ok := entry[dataKey].([]any)
	if !ok || len(tags) == 0 {
		return entry, 0
	}

	var patched []any
	total := 0
	for i, raw := range tags {
		tag, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		canonical, changed := canonicalTag(tag)
		if !changed {
			continue
		}
		if patched == nil {
			patched = append([]any(nil), tags...)
		}
		patched[i] = canonical
		total++
	}
	if patched == nil {
		return entry, 0
	}

	out := maps.Clone(entry)
	out[dataKey] = patched
	return out, total
}

// canonicalTag rewrites the legacy capitalized fields of tag, if present.
func canonicalTag(tag map[string]any) (map[string]any, bool) {
	key, hasKey := tag[legacyTagKey]
	value, hasValue := tag[legacyTagValue]
	if !hasKey && !hasValue {
		return tag, false
	}

	out := make(map[string]any, len(tag))
	for field, v := range tag {
		if field != legacyTagKey && field != legacyTagValue {
			out[field] = v
		}
	}
	if hasKey {
		out[tagKey] = key
	}
	if hasValue {
		out[tagValue] = value
	}
	return out, true
}
