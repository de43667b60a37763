// Package reconcile keeps a mention range map in step with free-form text
// edits.
//
// The host only reports the text before and after a change plus its
// post-edit selection. Reconcile recovers the shape of the edit from those,
// repairs the range map, and returns the text the host should display. It
// never moves or invalidates a mention that lies wholly before the edit.
//
// Accept inserts a chosen suggestion at an open trigger.
package reconcile
