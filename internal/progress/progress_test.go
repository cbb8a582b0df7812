package progress

import "testing"

func TestRangeAt(t *testing.T) {
	r := Range{Min: 20, Max: 90}
	if got := r.At(0); got != 20 {
		t.Errorf("At(0) = %d, want 20", got)
	}
	if got := r.At(1); got != 90 {
		t.Errorf("At(1) = %d, want 90", got)
	}
	if got := r.At(-1); got != 20 {
		t.Errorf("At(-1) = %d, want clamped to 20", got)
	}
	if got := r.At(2); got != 90 {
		t.Errorf("At(2) = %d, want clamped to 90", got)
	}
}

func TestRangeAtStepMonotonic(t *testing.T) {
	r := Range{Min: 20, Max: 90}
	n := 5
	prev := -1
	for i := 0; i < n; i++ {
		got := r.AtStep(i, n)
		if got < prev {
			t.Fatalf("AtStep(%d, %d) = %d, not monotonic after %d", i, n, got, prev)
		}
		if got < r.Min || got > r.Max {
			t.Fatalf("AtStep(%d, %d) = %d, out of range [%d,%d]", i, n, got, r.Min, r.Max)
		}
		prev = got
	}
}

func TestRangeAtStepZeroSteps(t *testing.T) {
	r := Range{Min: 20, Max: 90}
	if got := r.AtStep(0, 0); got != r.Min {
		t.Errorf("AtStep(0, 0) = %d, want %d", got, r.Min)
	}
}

func TestChannelSenderDropsWhenFull(t *testing.T) {
	sender, ch := NewChannelSender(nil)
	// Fill beyond capacity; Send must never block or error.
	for i := 0; i < channelBuffer+10; i++ {
		if err := sender.Send(Event{Kind: JobProgress, Percent: i % 100}); err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
	}
	sender.Close()
	count := 0
	for range ch {
		count++
	}
	if count != channelBuffer {
		t.Errorf("drained %d events, want %d (buffer size)", count, channelBuffer)
	}
}

func TestCallbackSenderInvokesFunc(t *testing.T) {
	var received []Event
	sender := NewCallbackSender(func(e Event) {
		received = append(received, e)
	})
	sender.Send(Event{Kind: JobStarted, Index: 2})
	if len(received) != 1 || received[0].Index != 2 {
		t.Errorf("callback received %v, want one event with Index=2", received)
	}
}

func TestNoopSenderNeverErrors(t *testing.T) {
	var s NoopSender
	if err := s.Send(Event{Kind: BatchCompleted}); err != nil {
		t.Errorf("NoopSender.Send returned %v, want nil", err)
	}
	if s.Clone() == nil {
		t.Error("Clone() returned nil")
	}
}
