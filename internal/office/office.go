/**
 * Office converter
 *
 * Drives a process-global LibreOffice headless engine to emit a PDF from
 * office-family inputs, under the same security discipline as rasterization
 * (executed inside the sandbox). Grounded on the macos fallback branch of
 * original_source/app/src/processing.rs's officeproc module (shelling out
 * to soffice --headless --convert-to pdf:<filter>, scanning the output
 * directory for the produced file rather than reading stdout), generalized
 * to every platform since this pack carries no first-class LibreOfficeKit
 * binding for Go — the UNO/LibreOfficeKit in-process API original_source
 * uses on other platforms has no maintained Go binding anywhere in this
 * corpus. Like that macos branch, password-protected office documents are
 * out of reach of the CLI entrypoint and are rejected up front.
 */

package office

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
)

// Engine is the process-global office conversion singleton spec's design
// note mandates: only one job may load/save through it at a time, the
// mutex released before the next stage begins.
type Engine struct {
	programDir string
	log        *logging.Logger

	mu          sync.Mutex
	conversions int // since-last-trim counter driving the memory discipline below
}

var (
	globalOnce   sync.Once
	globalEngine *Engine
)

// Get returns the process-global Engine, constructing it on first use.
// Engine instances are expensive and effectively global per spec's design
// note on the office engine.
func Get(programDir string, log *logging.Logger) *Engine {
	globalOnce.Do(func() {
		globalEngine = &Engine{programDir: programDir, log: log}
	})
	return globalEngine
}

// trimThreshold is the per-process conversion count at which trimMemory
// runs and the counter resets. The number echoes the original's
// trim_memory soft target (~2000 units), but here it counts conversions.
const trimThreshold = 2000

// officeFilterName picks the export filter soffice's --convert-to needs to
// produce a faithful PDF for the input's document class, mirroring
// original_source's office_filter_name table.
func officeFilterName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pptx", ".ppt", ".odp", ".odg":
		return "impress_pdf_Export"
	case ".xlsx", ".xls", ".ods":
		return "calc_pdf_Export"
	default:
		return "writer_pdf_Export"
	}
}

// ConvertToPDF loads inputPath (an office-family document) and saves it as
// a PDF at outputPath. Password-protected office documents cannot be
// unlocked through soffice's --convert-to entrypoint, which exposes no
// password callback at all, so a non-empty password is rejected with
// FeatureMissing before any conversion is attempted, matching
// original_source's own CLI-spawn branch.
func (e *Engine) ConvertToPDF(ctx context.Context, inputPath, outputPath, password string) error {
	if password != "" {
		return failure.NewFeatureMissing("", "office password support", "password-protected office documents are not supported")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sofficePath := e.resolveSofficePath()
	outDir := filepath.Join(filepath.Dir(outputPath), "office_outdir")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return failure.NewIo("", outDir, err)
	}
	defer os.RemoveAll(outDir)

	filterName := officeFilterName(inputPath)
	args := []string{
		"--headless", "--norestore",
		"--convert-to", fmt.Sprintf("pdf:%s", filterName),
		"--outdir", outDir,
		inputPath,
	}

	cmd := exec.CommandContext(ctx, sofficePath, args...)
	err := cmd.Run()

	e.conversions++
	if e.conversions >= trimThreshold {
		e.trimMemory()
		e.conversions = 0
	}

	if err != nil {
		return failure.NewRuntimeError("", "could not export input document to PDF", err)
	}

	convertedPath, found := findConvertedPDF(outDir)
	if !found {
		return failure.NewRuntimeError("", "could not export input document to PDF", nil)
	}
	if err := copyFile(convertedPath, outputPath); err != nil {
		return failure.NewIo("", outputPath, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return failure.NewIo("", outputPath, err)
	}
	return nil
}

// findConvertedPDF scans dir for the single PDF soffice produced, the same
// read-the-output-directory approach original_source uses in place of
// trusting a predictable output filename.
func findConvertedPDF(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".pdf") {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

// trimMemory logs a debug line when the conversion count reaches
// trimThreshold. It releases no memory and sends nothing to soffice: each
// conversion runs its own soffice process, which exits when it is done.
func (e *Engine) trimMemory() {
	if e.log != nil {
		e.log.Debug("office engine conversion count reached trim threshold", "threshold", trimThreshold)
	}
}

func (e *Engine) resolveSofficePath() string {
	if e.programDir != "" {
		return filepath.Join(e.programDir, "soffice")
	}
	if path, err := exec.LookPath("soffice"); err == nil {
		return path
	}
	return "soffice"
}
