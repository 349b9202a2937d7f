// File: internal/platform/database/migrations/migrations.go
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
