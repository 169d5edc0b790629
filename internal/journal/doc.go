// Package journal provides SQLite-backed audit storage for cms sessions.
//
// Every successful mutating shell command appends one entry. The journal is
// append-only and never read back into a Store; it answers "who changed
// what, in which session, in what order".
//
// # Ordering
//
//   - Entries are ordered by seq INTEGER (AUTOINCREMENT), never by the
//     timestamp column
//   - All reads return entries in ascending seq order
//
// # Database Configuration
//
//   - WAL mode: the cli can list entries while a shell is writing
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Journal failures are reported to the caller, which logs them; they never
// abort a shell command.
package journal
