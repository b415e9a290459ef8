// Package migrations embeds the SQL migration files into the binary, so
// the proxy can create and evolve its schema without the files being
// present on the target filesystem.
package migrations

import (
	"embed"

	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at the root of the embedded FS
}
