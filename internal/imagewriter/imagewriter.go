// Package imagewriter wraps a rasterized page image as a single-page PDF
// without OCR, the "no-OCR path" of spec's §4.5. Uses pdfcpu's
// ImportImagesFile with pdfcpu's default import and write configuration,
// DPI left at 0; no compression option, page resolution or page height is
// set here.
package imagewriter

import (
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
)

// WritePagePDF wraps pngBytes (one rasterized page) into a single-page PDF
// at outPath, sized to fit the image at its natural resolution.
func WritePagePDF(pngBytes []byte, outPath string) error {
	tmpImg, err := os.CreateTemp(filepath.Dir(outPath), "page-*.png")
	if err != nil {
		return failure.NewIo("", outPath, err)
	}
	defer os.Remove(tmpImg.Name())

	if _, err := tmpImg.Write(pngBytes); err != nil {
		tmpImg.Close()
		return failure.NewIo("", tmpImg.Name(), err)
	}
	if err := tmpImg.Close(); err != nil {
		return failure.NewIo("", tmpImg.Name(), err)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.DPI = 0 // use the image's native size rather than rescaling

	conf := model.NewDefaultConfiguration()

	if err := api.ImportImagesFile([]string{tmpImg.Name()}, outPath, imp, conf); err != nil {
		return failure.NewRuntimeError("", "failed to wrap page image as PDF", err)
	}
	return nil
}
