// Package migrations embeds the Hearth schema into the binary. Importing
// it registers the files with the database package.
package migrations

import (
	"embed"

	"github.com/nerrad567/hearth/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.Migrations = files
}
