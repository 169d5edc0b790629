// Package record defines the student record held by the store and the
// field-level helpers shared by the codec, the shell, and the validator.
//
// A Record is a plain value. Identity is its ID; nothing else about a
// Record is unique. Free-text fields (Name, Programme) may contain any
// runes in memory, but the persisted format forbids tab, carriage return
// and line feed, so every writer runs Sanitize before emitting them.
//
// # Field limits
//
//   - ID: caller-assigned integer, typed by users as exactly IDDigits digits
//   - Name: at most MaxNameWidth display columns (wide runes count 2)
//   - Programme: at most MaxFieldLen runes
//   - Mark: in [MinMark, MaxMark], kept at full float64 precision and
//     rendered with two decimals
package record
