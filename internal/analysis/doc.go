// Package analysis turns an analysis request into one UCI search cycle.
//
// PlanSearch derives the search command and the wait deadline from the
// request. The Coordinator drains stale output, sets the position, issues the
// search and reads the bestmove reply, mapping every outcome to a Result.
// Analyze never returns an error: failures are reported as a FailureKind with
// the cause attached.
package analysis
