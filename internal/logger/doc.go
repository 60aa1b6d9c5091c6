// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder tuned for lab runs,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// All services accept a context and extract the logger from it, so a run ID
// attached once at the top of a run shows up on every phase message.
package logger
