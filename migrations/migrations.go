// Package migrations embeds the goose SQL migrations so the binary does not
// depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// EnumTypes are the custom Postgres types the task store encodes through pgx.
var EnumTypes = []string{
	"task_status", "_task_status",
	"task_label", "_task_label",
	"task_priority", "_task_priority",
}
