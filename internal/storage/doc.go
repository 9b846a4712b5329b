// Package storage provides the note metadata index for locknote.
//
// Two backends implement Index:
//   - SQLite (default): a single notes table, schema in schema.sql
//   - BBolt: buckets notes (id -> record), filenames (filename -> id), meta
//
// Both enforce filename uniqueness, order listings by creation time (newest
// first, ties broken by descending id) and commit every mutation before
// returning. Search is a case-sensitive substring match on title or filename.
//
// The meta table/bucket holds small values that must live as long as the
// notes directory, such as the KDF salt and the store id.
package storage
