// Package config manages user-level settings stored at ~/.cxschema/config.yaml.
// Every key can also be set through a CXSCHEMA_-prefixed environment variable
// (dots and dashes become underscores, e.g. CXSCHEMA_LOG_LEVEL).
package config
