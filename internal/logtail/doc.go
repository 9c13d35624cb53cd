// Package logtail reads the tail of the KeyBot CLI log file and renders its
// slog JSON records for the terminal.
//
// # Reading Log Files
//
// Read extracts the last maxLines from a file with a ring buffer:
//
//   - Scans the file sequentially (one pass)
//   - Uses O(maxLines) memory, not O(file size)
//   - Returns lines in chronological order
//
// A maxLines of zero or less returns the whole file. A missing file is not an
// error; it simply has no lines yet.
//
// # Parsing Records
//
// The CLI writes one JSON object per line (see package logging). Parse splits
// a record into time, level, message and the remaining attributes in their
// original order. Format renders a record as
//
//	15:04:05 LEVEL message key=value key="value with spaces"
//
// and leaves non-JSON lines untouched.
package logtail
