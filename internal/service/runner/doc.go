// Package runner implements the pulse-injector process: it loads the
// configuration, opens the actuator driver, serves the supervisor endpoints
// and drives exactly one pulse sequence to its terminal state.
package runner
