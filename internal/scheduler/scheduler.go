/**
 * Batch scheduler
 *
 * Drives a sequence of jobs serially (one at a time), running each through
 * executor.Sanitize in the calling process; no sandbox driver is involved
 * in running a job. Structurally grounded on the worker's queue.Consumer /
 * queue.RedisConsumer job-lifecycle bookkeeping (status transitions,
 * structured failure objects surfaced per job) but collapsed from
 * N-concurrent-workers-over-a-broker to one goroutine iterating a slice in
 * order, since the office engine's process-global singleton and each
 * sandbox invocation's memory/CPU footprint rule out running jobs
 * concurrently.
 */

package scheduler

import (
	"context"

	"github.com/rimerosolutions/entrusted-go/internal/executor"
	"github.com/rimerosolutions/entrusted-go/internal/job"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
)

// Result is the outcome of running one Job through the executor.
type Result struct {
	Job        job.Job
	OutputPath *string
	Err        error
	Cancelled  bool
}

// Run drives jobs serially through deps, emitting JobStarted/JobFinished/
// JobFailed around each and exactly one BatchCompleted at the end. The
// stop flag is shared across jobs: once set, the current job observes
// cancellation at its next sample point, remaining jobs are not started,
// and BatchCompleted carries the partial counts.
func Run(ctx context.Context, jobs []job.Job, deps executor.Deps, sender progress.Sender, stop *executor.StopFlag, log *logging.Logger) []Result {
	results := make([]Result, 0, len(jobs))
	succeeded, failed := 0, 0

	for _, j := range jobs {
		if stop.Requested() {
			break
		}

		sender.Send(progress.Event{Kind: progress.JobStarted, Index: j.Index})

		jobSender := sender.Clone()
		outputPath, err := executor.Sanitize(ctx, j, deps, jobSender, stop)

		switch {
		case err != nil:
			failed++
			log.WithJob(j.ID).Error("job failed", "error", err)
			sender.Send(progress.Event{Kind: progress.JobFailed, Index: j.Index, JobID: j.ID})
			results = append(results, Result{Job: j, Err: err})

		case outputPath == nil:
			// Observed cancellation: Ok(None), not a failure.
			sender.Send(progress.Event{Kind: progress.JobFinished, Index: j.Index, JobID: j.ID, OutputPath: nil})
			results = append(results, Result{Job: j, Cancelled: true})

		default:
			succeeded++
			sender.Send(progress.Event{Kind: progress.JobFinished, Index: j.Index, JobID: j.ID, OutputPath: outputPath})
			results = append(results, Result{Job: j, OutputPath: outputPath})
		}
	}

	sender.Send(progress.Event{
		Kind:      progress.BatchCompleted,
		Succeeded: succeeded,
		Failed:    failed,
		Total:     len(jobs),
	})

	return results
}
