// Package migrations embeds the SQL schema of the SQLite campaign store.
package migrations
