package office

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOfficeFilterName(t *testing.T) {
	cases := map[string]string{
		"report.pptx":    "impress_pdf_Export",
		"report.ppt":     "impress_pdf_Export",
		"slides.odp":     "impress_pdf_Export",
		"drawing.odg":    "impress_pdf_Export",
		"sheet.xlsx":     "calc_pdf_Export",
		"sheet.xls":      "calc_pdf_Export",
		"sheet.ods":      "calc_pdf_Export",
		"letter.docx":    "writer_pdf_Export",
		"letter.odt":     "writer_pdf_Export",
		"no-extension":   "writer_pdf_Export",
		"UPPER.CASE.PPT": "impress_pdf_Export",
	}
	for name, want := range cases {
		if got := officeFilterName(name); got != want {
			t.Errorf("officeFilterName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestConvertToPDFRejectsPasswordUpfront(t *testing.T) {
	e := &Engine{}
	err := e.ConvertToPDF(context.Background(), "in.docx", "out.pdf", "secret")
	if err == nil {
		t.Fatal("expected an error for a password-protected office document")
	}
}

func TestFindConvertedPDF(t *testing.T) {
	dir := t.TempDir()
	if _, ok := findConvertedPDF(dir); ok {
		t.Fatal("expected no PDF found in an empty directory")
	}

	pdfPath := filepath.Join(dir, "letter.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	got, ok := findConvertedPDF(dir)
	if !ok {
		t.Fatal("expected to find the converted PDF")
	}
	if got != pdfPath {
		t.Errorf("findConvertedPDF = %q, want %q", got, pdfPath)
	}
}
