// Package schemas embeds the JSON schemas shipped with loadout.
package schemas

import _ "embed"

// ConfigSchemaJSON is the schema for .loadout.yaml project files.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
