package imagewriter

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture PNG: %v", err)
	}
	return buf.Bytes()
}

func TestWritePagePDFRejectsInvalidImageBytes(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "page-1.pdf")
	if err := WritePagePDF([]byte("not a png"), outPath); err == nil {
		t.Fatal("expected an error for non-image bytes")
	}
}

func TestWritePagePDFCleansUpTempImage(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "page-1.pdf")

	// WritePagePDF may fail in a test environment without pdfcpu's image
	// codecs wired up; regardless of success, it must not leak its
	// scratch PNG file into the output directory.
	_ = WritePagePDF(pngFixture(t), outPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".png" {
			t.Errorf("temp PNG %q was not cleaned up", e.Name())
		}
	}
}
