// Package ui provides semantic text formatters for CLI output.
//
// Formatters colour their text unless NO_COLOR is set or the output is not
// a terminal, in which case they fall back to plain decoration such as
// quotes or brackets.
package ui
