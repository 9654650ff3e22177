// Package migrations embeds the goose SQL migrations so binaries can migrate without the source tree.
package migrations

import "embed"

// FS holds every migration file
//
//go:embed *.sql
var FS embed.FS
