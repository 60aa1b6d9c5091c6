// Package stopper implements pulse-stop, which asks a running injector to end
// its sequence at the next phase boundary.
package stopper
