// Package rangemap holds the mention data model: entities, selections, and the
// immutable map of character ranges that tag spans of the raw display text.
//
// All offsets are rune offsets. A Range is inclusive on both ends, so a range
// covering "@tim" starting at 0 is [0,3]. Selections are half-open [Start,End).
//
// A Map is a value. Every mutating operation returns a new Map and leaves the
// receiver untouched, which keeps the disjointness invariant checkable after
// every step.
package rangemap
