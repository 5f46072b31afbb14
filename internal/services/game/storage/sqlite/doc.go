// Package sqlite persists campaign logs and snapshots in SQLite through
// modernc.org/sqlite.
//
// events is keyed by (campaign_id, seq); an append reads MAX(seq) inside an
// immediate transaction and rejects the batch when it differs from the
// caller's expected seq. A primary key collision is reported the same way.
package sqlite
