// Package jobs accepts uploads and tracks the lifecycle of each processing job.
//
// Registry is the in-memory status table shared between HTTP handlers and
// workflow workers. It is constructed explicitly and passed by reference;
// entries are volatile and disappear on restart. Intake validates an upload,
// persists it write-once into the upload directory, registers the job, and
// hands it to a Submitter without waiting for processing.
package jobs
