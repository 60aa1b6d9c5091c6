// Package injector runs the pulse-cycle state machine.
//
// A Controller is built for exactly one run: it drives an actuator through
// vibrate-on, vibrate-off-and-close and reopen for every pulse, waits on an
// injected clock between phases, and always finishes by silencing the
// vibration source.
package injector
