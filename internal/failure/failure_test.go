package failure

import (
	"errors"
	"testing"
)

func TestNewInvalidInputUnwraps(t *testing.T) {
	cause := errors.New("boom")
	f := NewInvalidInput("job-1", "wrong password", cause)
	if f.Kind != InvalidInput {
		t.Errorf("Kind = %v, want InvalidInput", f.Kind)
	}
	if !errors.Is(f, cause) {
		t.Error("errors.Is(f, cause) = false, want true")
	}
}

func TestNewUnsupportedKindDetails(t *testing.T) {
	f := NewUnsupportedKind("", "application/x-mystery")
	m := f.ToMap()
	if m["kind"] != "application/x-mystery" {
		t.Errorf("ToMap()[\"kind\"] = %v, want application/x-mystery", m["kind"])
	}
}

func TestFailureErrorIncludesJobID(t *testing.T) {
	f := NewIo("job-42", "/tmp/x", errors.New("no such file"))
	got := f.Error()
	if !contains(got, "job-42") {
		t.Errorf("Error() = %q, want it to contain job id", got)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}
