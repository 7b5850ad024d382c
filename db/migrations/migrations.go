// Package migrations embeds the ledger schema. Files follow the
// golang-migrate naming scheme NNNNNN_name.{up,down}.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Version is the schema version the service expects. Bump it together with
// every new migration pair.
const Version uint = 2
