// Package blobstore keeps one encrypted file per note in a single directory.
//
// All file operations go through an os.Root opened on the notes directory,
// so a tampered index row naming "../x" or an absolute path cannot read or
// write outside it. Names must be a single local path element.
package blobstore
