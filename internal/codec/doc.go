// Package codec reads and writes the tab-separated table format shared by
// the primary database file and the autosave shadow file.
//
// # Format
//
//	ID\tName\tProgramme\tMark\n        header, written on save, skipped on load
//	%d\t%s\t%s\t%.2f\n                 one line per record, store order
//
// Load is tolerant: a malformed row becomes a ParseError in the result and
// loading continues with the next line. Only failing to open or read the
// file is an error. A file with no lines at all is an empty database.
//
// Save sanitizes Name and Programme on every call, so a written file always
// has exactly four fields per line. With Options.Atomic the new content is
// written to a temporary file and renamed over the destination.
package codec
