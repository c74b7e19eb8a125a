// Package api embeds the authored GraphQL SDL document describing the
// contract layer's shape to external collaborators.
package api

import _ "embed"

//go:embed schema.graphql
var SchemaSDL string
