// Package git reports whether exported plaintext notes are exposed to git.
//
// Checks performed on the export directory:
//   - Whether it lies inside a git work tree
//   - Whether exported files are tracked by git (should not be)
//   - Whether exported files are ignored (should be)
//
// Exports are decrypted text, so committing them by accident defeats the encryption.
package git
