// Package command defines the game command sum type and its JSON decoding.
//
// Commands express player and GM intent. Decoding is strict: unknown fields,
// unknown types, and a missing campaign id are schema errors that never reach
// the decider. No command names the acting player; the decider resolves the
// player from the submitting actor.
package command
