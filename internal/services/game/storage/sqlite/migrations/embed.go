package migrations

import "embed"

// EventsFS holds the event log and snapshot schema.
//
//go:embed events/*.sql
var EventsFS embed.FS
