// Package core keeps the encrypted blob store and the metadata index
// consistent across note operations.
//
// Core operations include:
//   - Create: write the encrypted blob, then insert the index row
//   - Read: decrypt a note's blob, failing if the file is missing
//   - Edit: decrypt to a temp sibling, run $EDITOR, re-encrypt on success
//   - Delete: remove the blob (missing is fine), then the index row
//   - ExportAll/ExportOne: write decrypted copies outside the notes directory
//   - Orphans/Prune: find and reclaim files left by interrupted operations
//
// Ordering between the blob store and the index always prefers leaving an
// orphan file over leaving an index row that points at nothing.
package core
