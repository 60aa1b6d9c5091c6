// Package pulse contains the core domain types of the particle injector.
//
// CycleConfig is the immutable parameterization of one experiment run and
// owns the derived hold arithmetic. Phase, Outcome, Result and Progress
// describe a run as it advances; Operator and RunRecord feed the journal.
package pulse
