// Package stage defines the shared contracts between the workflow executor
// and the individual pipeline stages.
//
// Stages report recoverable problems as a degraded Outcome rather than an
// error: the placeholder text is still persisted so the memory record is
// complete, and the Degraded flag lets callers tell it apart from real
// content. Errors returned by a stage are fatal to the job.
package stage
