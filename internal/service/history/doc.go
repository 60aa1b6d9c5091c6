// Package history implements pulse-history, which lists past runs from the
// journal.
package history
