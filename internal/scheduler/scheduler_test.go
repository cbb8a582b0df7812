package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rimerosolutions/entrusted-go/internal/executor"
	"github.com/rimerosolutions/entrusted-go/internal/job"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
)

// TestRunStopsBeforeStartingWhenAlreadyRequested exercises the scheduler's
// at-most-one-concurrency/cancellation contract without needing a working
// sandbox or office engine: a pre-set stop flag must prevent any job from
// starting and still emit exactly one BatchCompleted with partial counts.
func TestRunStopsBeforeStartingWhenAlreadyRequested(t *testing.T) {
	jobs := []job.Job{
		job.NewJob(0, "a.pdf", "a-out.pdf", job.JobOptions{}),
		job.NewJob(1, "b.pdf", "b-out.pdf", job.JobOptions{}),
		job.NewJob(2, "c.pdf", "c-out.pdf", job.JobOptions{}),
	}

	stop := executor.NewStopFlag()
	stop.Request()

	var events []progress.Event
	sender := progress.NewCallbackSender(func(e progress.Event) {
		events = append(events, e)
	})

	log := logging.NewLogger("test")
	results := Run(context.Background(), jobs, executor.Deps{}, sender, stop, log)

	assert.Empty(t, results)
	assert.Len(t, events, 1)
	assert.Equal(t, progress.BatchCompleted, events[0].Kind)
	assert.Equal(t, 0, events[0].Succeeded)
	assert.Equal(t, 0, events[0].Failed)
	assert.Equal(t, 3, events[0].Total)
}

func TestRunEmptyBatch(t *testing.T) {
	stop := executor.NewStopFlag()
	var events []progress.Event
	sender := progress.NewCallbackSender(func(e progress.Event) {
		events = append(events, e)
	})
	log := logging.NewLogger("test")

	results := Run(context.Background(), nil, executor.Deps{}, sender, stop, log)

	assert.Empty(t, results)
	assert.Len(t, events, 1)
	assert.Equal(t, progress.BatchCompleted, events[0].Kind)
	assert.Equal(t, 0, events[0].Total)
}
