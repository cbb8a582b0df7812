// Package progress implements the typed in-process event channel that
// carries per-job progress, start/finish, and batch-complete events to
// subscribers. Modeled on the teacher's status-update plumbing
// (queue.RedisConsumer.updateJobStatus publishing a pubsub event per job
// transition) generalized to spec's polymorphic sender contract.
package progress

import (
	"github.com/google/uuid"

	"github.com/rimerosolutions/entrusted-go/internal/logging"
)

// Kind tags the variant carried by an Event.
type Kind int

const (
	JobStarted Kind = iota
	JobProgress
	JobFinished
	JobFailed
	BatchCompleted
)

// Event is the tagged union of spec's progress variants. Only the fields
// relevant to Kind are populated; the rest are zero.
type Event struct {
	Kind Kind

	// JobStarted, JobFinished, JobFailed
	Index int

	// JobProgress, JobFinished (informational), JobFailed
	JobID uuid.UUID

	// JobProgress
	Percent int
	Message string

	// JobFinished
	OutputPath *string // nil means interrupted (cancelled)

	// BatchCompleted
	Succeeded int
	Failed    int
	Total     int
}

// Sender is the polymorphic handle spec's executor holds for a job's
// lifetime: send an event, or obtain an independent handle safe to pass to
// another goroutine.
type Sender interface {
	Send(Event) error
	Clone() Sender
}

// channelBuffer is generous enough that ordinary batches never hit the
// non-blocking fallback below; it approximates spec's "unbounded queue"
// requirement without an actually-unbounded channel.
const channelBuffer = 4096

// ChannelSender is the default Sender: a buffered channel plus a
// non-blocking send. A full channel means no subscriber is draining fast
// enough (or at all); per spec the sender must never block indefinitely, so
// a full buffer degrades into a logged warning and the event is dropped
// rather than stalling the executor.
type ChannelSender struct {
	ch  chan Event
	log *logging.Logger
}

// NewChannelSender creates a ChannelSender and returns it alongside the
// receiving channel for subscribers to range over.
func NewChannelSender(log *logging.Logger) (*ChannelSender, <-chan Event) {
	ch := make(chan Event, channelBuffer)
	return &ChannelSender{ch: ch, log: log}, ch
}

func (s *ChannelSender) Send(e Event) error {
	select {
	case s.ch <- e:
		return nil
	default:
		if s.log != nil {
			s.log.Warn("progress channel full, dropping event", "kind", int(e.Kind))
		}
		return nil
	}
}

func (s *ChannelSender) Clone() Sender {
	return s
}

// Close closes the underlying channel. Callers must stop sending before
// calling this; cmd/entrusted-worker calls it once after scheduler.Run has
// returned, i.e. after the final BatchCompleted has been sent.
func (s *ChannelSender) Close() {
	close(s.ch)
}

// CallbackSender wraps a caller-supplied function, for a UI-integrated
// forwarder that wakes its own event loop after each send. Grounded on the
// teacher's pattern of publishing a callback-shaped notification
// (redis_consumer.go's pubsub publish) rather than exposing the raw
// channel to the UI layer.
type CallbackSender struct {
	fn func(Event)
}

func NewCallbackSender(fn func(Event)) *CallbackSender {
	return &CallbackSender{fn: fn}
}

func (s *CallbackSender) Send(e Event) error {
	if s.fn != nil {
		s.fn(e)
	}
	return nil
}

func (s *CallbackSender) Clone() Sender {
	return s
}

// NoopSender discards every event. Useful for tests and for callers that
// only want the return value of Sanitize, not its progress stream.
type NoopSender struct{}

func (NoopSender) Send(Event) error { return nil }
func (NoopSender) Clone() Sender    { return NoopSender{} }

// Range is the [min, max] ⊆ [0, 100] interval scoping one executor stage's
// contribution to the overall percent, directly grounded on
// ProgressRange from the original processing engine.
type Range struct {
	Min, Max int
}

// At maps a fractional position within the stage (0.0..1.0) to an absolute
// percent within [Min, Max], clamped and rounded down.
func (r Range) At(fraction float64) int {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	pct := r.Min + int(fraction*float64(r.Max-r.Min))
	if pct < r.Min {
		pct = r.Min
	}
	if pct > r.Max {
		pct = r.Max
	}
	return pct
}

// AtStep maps step i of n total steps (i in [0, n)) to a percent within the
// range, used for per-page progress during rasterize/transform stages.
func (r Range) AtStep(i, n int) int {
	if n <= 0 {
		return r.Min
	}
	return r.At(float64(i) / float64(n))
}
