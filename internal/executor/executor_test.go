package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rimerosolutions/entrusted-go/internal/job"
)

func TestFinalOutputPathUsesJobOutputWhenSet(t *testing.T) {
	j := job.NewJob(0, "in.docx", "/dest/out.pdf", job.JobOptions{})
	assert.Equal(t, "/dest/out.pdf", finalOutputPath(j))
}

func TestFinalOutputPathAppliesDefaultSuffix(t *testing.T) {
	j := job.NewJob(0, "/tmp/in.docx", "", job.JobOptions{})
	assert.Equal(t, "/tmp/in-entrusted.pdf", finalOutputPath(j))
}

func TestFinalOutputPathAppliesCustomSuffix(t *testing.T) {
	j := job.NewJob(0, "/tmp/in.docx", "", job.JobOptions{Suffix: "-safe"})
	assert.Equal(t, "/tmp/in-safe.pdf", finalOutputPath(j))
}

func TestElapsedTimeMessageFormat(t *testing.T) {
	msg := elapsedTimeMessage(2*time.Hour + 3*time.Minute + 4*time.Second)
	assert.Equal(t, "Elapsed time: 2h 3m 4s", msg)
}

func TestStopFlagRequest(t *testing.T) {
	f := NewStopFlag()
	assert.False(t, f.Requested())
	f.Request()
	assert.True(t, f.Requested())
}
