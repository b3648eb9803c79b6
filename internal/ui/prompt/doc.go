// Package prompt provides the interactive yes/no prompt used before
// destructive changes.
package prompt
