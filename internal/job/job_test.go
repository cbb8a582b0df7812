package job

import "testing"

func TestParseVisualQuality(t *testing.T) {
	cases := map[string]VisualQuality{
		"low":    Low,
		"Low":    Low,
		"medium": Medium,
		"":       Medium,
		"bogus":  Medium,
		"high":   High,
		"HIGH":   High,
	}
	for input, want := range cases {
		if got := ParseVisualQuality(input); got != want {
			t.Errorf("ParseVisualQuality(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestVisualQualityDPI(t *testing.T) {
	if Low.DPI() != 96 {
		t.Errorf("Low.DPI() = %d, want 96", Low.DPI())
	}
	if Medium.DPI() != 150 {
		t.Errorf("Medium.DPI() = %d, want 150", Medium.DPI())
	}
	if High.DPI() != 300 {
		t.Errorf("High.DPI() = %d, want 300", High.DPI())
	}
}

func TestJobOptionsLanguages(t *testing.T) {
	o := JobOptions{OCRLanguages: "eng+fra"}
	got := o.Languages()
	want := []string{"eng", "fra"}
	if len(got) != len(want) {
		t.Fatalf("Languages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Languages()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !o.OCRRequested() {
		t.Error("OCRRequested() = false, want true")
	}

	noOCR := JobOptions{}
	if noOCR.Languages() != nil {
		t.Errorf("Languages() = %v, want nil", noOCR.Languages())
	}
	if noOCR.OCRRequested() {
		t.Error("OCRRequested() = true, want false")
	}
}

func TestNewJobUniqueIDs(t *testing.T) {
	a := NewJob(0, "in.pdf", "out.pdf", JobOptions{})
	b := NewJob(1, "in.pdf", "out.pdf", JobOptions{})
	if a.ID == b.ID {
		t.Error("two jobs got the same ID")
	}
}
