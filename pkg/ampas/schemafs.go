package ampas

import "embed"

// SchemaFS contains the embedded AMPAS JSON schema.
//
//go:embed ampas-schema.json
var SchemaFS embed.FS
