// Package shell is the line-oriented command dispatcher for cms.
//
// A Session reads one command per line, applies it to the in-memory store
// and prints the outcome. Mutating commands (INSERT, UPDATE, DELETE) are
// followed by an autosave to the shadow file and, when a journal is
// attached, an audit entry. SAVE is the only command that writes the
// primary file.
//
// Commands:
//
//	OPEN [file]
//	SHOW ALL | SHOW SUMMARY
//	INSERT ID=<id> Name=<name> Programme=<programme> Mark=<mark>
//	QUERY ID=<id>
//	UPDATE ID=<id> [Name=<name>] [Programme=<programme>] [Mark=<mark>]
//	DELETE ID=<id>
//	SORT BY [ID|MARK] [ASC|DESC]
//	SAVE
//	HELP
//	EXIT | QUIT
//
// Keywords are case-insensitive. A KEY=value argument runs until the next
// known key, so names and programmes may contain spaces.
package shell
