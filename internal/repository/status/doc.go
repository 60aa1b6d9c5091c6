// Package status persists the latest progress snapshot of a run.
//
// The FileRepository stores and loads the snapshot as JSON on disk so an
// operator can see where a run stopped even after the process is gone.
package status
