// Package history keeps the append-only timeline of state snapshots that the
// router navigates through.
//
// Every state change merges a delta into a clone of the latest snapshot,
// prunes tombstones and empty branches, and appends the result. Snapshots are
// never modified once pushed.
package history
