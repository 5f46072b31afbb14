// Package check resolves roll totals against a difficulty class.
//
// Outcomes are ordered, contiguous bands around the difficulty class:
// veryGood, good, success, poor and fail. The band widths are balance
// constants; the ordering and monotonicity are not.
package check
