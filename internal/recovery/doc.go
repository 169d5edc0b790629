// Package recovery reconciles the primary database file with its autosave
// shadow after an unclean exit.
//
// Divergence is a raw byte comparison, not a record diff: different
// formatting, trailing whitespace or row order all count. The coordinator
// only answers "diverged or not" and applies the user's decision; asking
// the user is the shell's job.
//
// # Protocol
//
//  1. Check the pair. A missing shadow is StatusNoShadow, never an error.
//  2. If StatusDiverged, load both files independently and show them.
//  3. Resolve(Keep) writes the shadow's records over the primary.
//     Resolve(Discard) reloads the primary and overwrites the shadow.
package recovery
