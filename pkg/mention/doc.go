// Package mention is the public face of the mention-aware text model.
//
// Model is a value: each operation takes the current state and returns the
// next one together with a Change describing what a host has to redraw.
// Editor wraps a Model for hosts that prefer callbacks, forwarding every
// change to a Notifier and sourcing post-edit selections from a
// SelectionSource.
//
// Display text carries mentions as "@display". The canonical form stored by
// callers is "@[display](id:id)".
package mention
