// Package migrations embeds the goose SQL migrations so a deployed
// binary can migrate its own schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
