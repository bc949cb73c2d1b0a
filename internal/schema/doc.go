// Package schema validates in-memory JSON documents against a JSON Schema
// grammar and reports every violation with the instance path it occurred at.
package schema
