// Package workflow runs accepted uploads through the processing stages.
//
// The Executor drives a single job: transcription, summarization, keyframe
// extraction, then persistence, publishing progress checkpoints to the job
// registry as it goes. Degraded stage output is recorded and processing
// continues; a persistence failure, a keyframe fault, a panic, or
// cancellation fails the job and removes the files it produced.
//
// The Pool bounds concurrency: a fixed set of workers drains a buffered task
// channel, and Submit never blocks. Each task runs under the configured job
// timeout and the pool's lifetime context, so Stop cancels in-flight work.
package workflow
