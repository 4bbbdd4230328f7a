// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and by the repository test harness.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate's
// <version>_<name>.<up|down>.sql layout.
//
//go:embed *.sql
var FS embed.FS
