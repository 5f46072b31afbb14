// Package campaign owns the campaign aggregate: its state, the command decider,
// the event reducer, and the read views derived from state.
//
// Decide is pure. Given the same state, command, actor, rules, and random
// draws it returns the same events, or a coded error with no events at all.
// ReduceEvents is the only way state changes, and it never looks at who
// submitted an event or who may read it, so replaying a log always rebuilds
// the same state.
package campaign
