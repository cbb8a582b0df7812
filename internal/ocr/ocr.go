/**
 * OCR engine wrapper
 *
 * Adapts the worker's tesseract_ocr.go (gosseract-based) to spec's OCR
 * path: validate the requested language list, run OCR, and hand back a
 * searchable single-page PDF whose visible layer is the rasterized page
 * image and whose invisible layer is the OCR'd text.
 *
 * gosseract's C API binding exposes recognized text and hOCR but not
 * tesseract's own PDF renderer (that lives in the CLI's pdf output format,
 * unavailable through the cgo API this library wraps) so the final
 * searchable-PDF write shells out to the tesseract binary's "pdf"
 * configfile the same way the CLI itself would be invoked — the one place
 * in this package that isn't pure library calls.
 */

package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
)

// knownLanguageCodes mirrors the translator's known-code table spec's OCR
// path validates each "+"-separated code against before invocation. Kept as
// the common ISO 639-2/T three-letter set tesseract ships trained data for.
var knownLanguageCodes = map[string]bool{
	"eng": true, "fra": true, "deu": true, "spa": true, "ita": true,
	"por": true, "nld": true, "rus": true, "jpn": true, "chi_sim": true,
	"chi_tra": true, "kor": true, "ara": true, "hin": true, "pol": true,
	"swe": true, "dan": true, "nor": true, "fin": true, "ces": true,
	"ell": true, "tur": true, "ukr": true, "vie": true, "tha": true,
}

// Engine wraps gosseract with the trained-data directory resolved from
// ENTRUSTED_TESSERACT_TESSDATA_DIR (or the well-known default).
type Engine struct {
	TessdataDir string
}

func NewEngine(tessdataDir string) *Engine {
	if tessdataDir == "" {
		tessdataDir = "/usr/share/tessdata"
	}
	return &Engine{TessdataDir: tessdataDir}
}

// ValidateLanguages checks every "+"-separated code against the known-code
// table, returning InvalidInput citing the bad code and a hint string, per
// spec's boundary behavior "OCR requested with unknown language code".
func (e *Engine) ValidateLanguages(langs []string) error {
	for _, l := range langs {
		if !knownLanguageCodes[l] {
			return failure.NewInvalidInput("", fmt.Sprintf(
				"unknown OCR language code %q (expected a three-letter code such as \"eng\" or \"fra\")", l), nil)
		}
	}
	return nil
}

// WritePagePDF runs OCR over pngBytes with the given languages and writes a
// searchable single-page PDF to outPath. Fails with FeatureMissing when the
// trained data for a requested language is absent.
func (e *Engine) WritePagePDF(ctx context.Context, pngBytes []byte, langs []string, outPath string) error {
	if err := e.ValidateLanguages(langs); err != nil {
		return err
	}

	client := gosseract.NewClient()
	defer client.Close()

	client.TessdataPrefix = &e.TessdataDir
	if err := client.SetLanguage(langs...); err != nil {
		return failure.NewFeatureMissing("", "OCR trained data", strings.Join(langs, "+"))
	}
	if err := client.SetImageFromBytes(pngBytes); err != nil {
		return failure.NewRuntimeError("", "failed to load page image for OCR", err)
	}
	// Touch Text() so a missing trained-data file surfaces here (as
	// FeatureMissing) rather than only during the CLI invocation below.
	if _, err := client.Text(); err != nil {
		return failure.NewFeatureMissing("", "OCR trained data", strings.Join(langs, "+"))
	}

	tmpImg, err := os.CreateTemp(filepath.Dir(outPath), "ocr-page-*.png")
	if err != nil {
		return failure.NewIo("", outPath, err)
	}
	defer os.Remove(tmpImg.Name())
	if _, err := tmpImg.Write(pngBytes); err != nil {
		tmpImg.Close()
		return failure.NewIo("", tmpImg.Name(), err)
	}
	tmpImg.Close()

	outBase := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	args := []string{tmpImg.Name(), outBase, "-l", strings.Join(langs, "+"), "--tessdata-dir", e.TessdataDir, "pdf"}
	cmd := exec.CommandContext(ctx, "tesseract", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return failure.NewRuntimeError("", "tesseract PDF rendering failed: "+string(out), err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return failure.NewIo("", outPath, err)
	}
	return nil
}
