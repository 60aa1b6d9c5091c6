// Package journal keeps a SQLite history of injector runs: who started
// them, with which driver, how many pulses ran and how they ended.
package journal
