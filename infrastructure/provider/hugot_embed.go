//go:build embed_model

package provider

import "embed"

// embeddedModelFS is populated by running
// `moviesearch model --dest infrastructure/provider/models` before building.
//
//go:embed all:models
var embeddedModelFS embed.FS

const hasEmbeddedModel = true
