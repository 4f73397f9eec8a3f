// Package migrations embeds the per-dialect SQL migrations for the payments
// ledger. Each dialect lives in its own directory.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
