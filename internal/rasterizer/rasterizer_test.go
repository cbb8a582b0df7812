package rasterizer

import (
	"image"
	"image/color"
	"testing"

	"github.com/rimerosolutions/entrusted-go/internal/job"
)

func TestTargetPixelsScalesWithDPI(t *testing.T) {
	lowW, lowH := targetPixels(job.Low)
	highW, highH := targetPixels(job.High)

	if highW <= lowW || highH <= lowH {
		t.Errorf("expected High quality box (%dx%d) to exceed Low quality box (%dx%d)", highW, highH, lowW, lowH)
	}
}

func TestFitToBoxPassesThroughWhenWithinBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	got := fitToBox(src, 200, 200)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 100 {
		t.Errorf("expected unchanged 100x100 image, got %v", got.Bounds())
	}
}

func TestFitToBoxScalesDownOversizedLandscapePage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 2000; x++ {
			src.Set(x, y, color.White)
		}
	}

	got := fitToBox(src, 500, 500)
	b := got.Bounds()
	if b.Dx() > 500 || b.Dy() > 500 {
		t.Fatalf("fitToBox did not fit within the target box: got %v", b)
	}
	// aspect ratio (2:1) should be preserved within rounding
	ratio := float64(b.Dx()) / float64(b.Dy())
	if ratio < 1.9 || ratio > 2.1 {
		t.Errorf("expected aspect ratio ~2.0, got %v (%v)", ratio, b)
	}
}
