// Package event defines the game event sum type, its visibility, and the
// stored envelope written to campaign logs.
//
// Events are immutable facts emitted by accepted decisions. Persistence wraps
// them in Stored with an id, a per-campaign sequence number, a timestamp, and
// the acting identity. The line codec round trips a Stored value exactly, and
// decoding an unknown event type is an error rather than a silent skip.
package event
