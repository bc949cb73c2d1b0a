// Package version parses and orders the semantic version strings that stamp
// every persisted manifest. It has no state and performs no I/O.
package version
