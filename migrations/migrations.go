// Package migrations embeds the SQL schema migrations for the rewards
// service. Files run in lexicographic order at startup.
package migrations

import "embed"

//go:embed *.up.sql
var Files embed.FS
