// Package watcher implements pulse-status: it prints the progress of a running
// injector once, or polls it until the run reaches an outcome.
package watcher
