// Package manifest persists versioned cloud assembly, asset, and integ
// manifests. Save stamps the current schema version onto a copy of the
// document and writes it as indented JSON. Load reads a document back,
// rewrites legacy stack tags into their canonical shape, refuses documents
// written by a newer producer than this build supports, and validates the
// result against the JSON schema embedded for its kind.
package manifest
