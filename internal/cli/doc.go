// Package cli defines the Cobra command tree for the cxschema CLI. Each file
// registers one top-level command (validate, inspect, migrate, etc.) with the
// root command. Commands delegate manifest handling to internal/manifest and
// only deal with flags, output formatting, and error presentation.
package cli
