// Package config defines the injector settings shared by all binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Config holds the pulse cycle, the hardware wiring, the supervisor
// endpoints and storage paths. Environment references in the file are
// expanded on load, optionally seeded from a dotenv file.
package config
