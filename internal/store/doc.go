// Package store holds the in-memory ordered collection of student records
// for one session.
//
// The Store is an owned slice plus an id→position index. Insertion order is
// preserved until SortBy is called; removal keeps the relative order of the
// remaining records. Head and Tail are derived from the slice, so they can
// never go stale after a removal.
//
// # Contracts
//
//   - Uniqueness: Insert rejects an ID already present with ErrDuplicateKey
//     and leaves the existing record untouched.
//   - Range: Insert and Update reject marks outside [0,100] with
//     ErrOutOfRange.
//   - Sorting: SortBy is a stable adjacent-exchange sort. Equal keys keep
//     their prior relative order in both directions.
//
// Store does no I/O and is not safe for concurrent use; the shell owns it
// and drives it from a single goroutine.
package store
