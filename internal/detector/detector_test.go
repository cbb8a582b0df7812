package detector

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestDetectPdf(t *testing.T) {
	path := writeTemp(t, "input.bin", []byte("%PDF-1.7\n%min\n"))
	kind, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if kind.Family != Pdf {
		t.Errorf("Family = %v, want Pdf", kind.Family)
	}
}

func TestDetectPngByMagicEvenWithWrongExtension(t *testing.T) {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	path := writeTemp(t, "photo.txt", pngMagic)
	kind, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if kind.Family != Image || kind.Sub != "png" {
		t.Errorf("kind = %+v, want Image/png", kind)
	}
}

func TestDetectUnsupportedKind(t *testing.T) {
	path := writeTemp(t, "mystery.bin", []byte{0x00, 0x01, 0x02, 0x03})
	_, err := Detect(path)
	if err == nil {
		t.Fatal("expected UnsupportedKind error, got nil")
	}
}

func TestExistsMissingFile(t *testing.T) {
	err := Exists(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestExistsPresentFile(t *testing.T) {
	path := writeTemp(t, "present.txt", []byte("hello"))
	if err := Exists(path); err != nil {
		t.Errorf("Exists returned %v for a present file", err)
	}
}
