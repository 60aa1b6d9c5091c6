// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC supervisor client with call timeouts, operator
// detection for the run journal and a guard against a second injector process.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
