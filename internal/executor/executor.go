/**
 * Conversion executor
 *
 * The state machine that sequences format detection, office conversion,
 * rasterization, OCR-or-wrap, combining and the final move for one
 * document, reporting progress and honouring cancellation. Grounded on
 * original_source/app/src/processing.rs's execute() and its ProgressRange
 * helper, rendered as Go's idiomatic (value, error) in place of
 * Result<Option<T>>.
 */

package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rimerosolutions/entrusted-go/internal/combiner"
	"github.com/rimerosolutions/entrusted-go/internal/detector"
	"github.com/rimerosolutions/entrusted-go/internal/failure"
	"github.com/rimerosolutions/entrusted-go/internal/imagewriter"
	"github.com/rimerosolutions/entrusted-go/internal/job"
	"github.com/rimerosolutions/entrusted-go/internal/ocr"
	"github.com/rimerosolutions/entrusted-go/internal/office"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
	"github.com/rimerosolutions/entrusted-go/internal/rasterizer"
)

// Ranges, directly grounded on processing.rs's ProgressRange partitioning
// of [0, 100] into stage contributions.
var (
	rangeOpening  = progress.Range{Min: 0, Max: 20}
	rangePages    = progress.Range{Min: 20, Max: 90}
	rangeCombine  = progress.Range{Min: 90, Max: 98}
	rangeFinalize = progress.Range{Min: 98, Max: 100}
)

// Deps bundles the collaborators Sanitize needs, so the function itself
// stays free of global state (other than the office package's own
// process-global singleton, which Deps merely references).
type Deps struct {
	OCREngine    *ocr.Engine
	OfficeEngine *office.Engine
	TessdataDir  string
}

// Sanitize is the public operation spec's §4.8 names: detect → normalize to
// PDF → rasterize pages → (OCR ∨ wrap) → combine → optionally encrypt →
// move to destination. Returns (path, nil) on success, (nil, nil) on
// observed cancellation, (nil, err) on failure.
func Sanitize(ctx context.Context, j job.Job, deps Deps, sender progress.Sender, stop *StopFlag) (*string, error) {
	start := time.Now()

	workspace, err := newWorkspace(j.ID.String())
	if err != nil {
		return nil, err
	}
	defer workspace.cleanup()

	if err := detector.Exists(j.InputPath); err != nil {
		return nil, err
	}

	if cancelled(ctx, stop) {
		return nil, nil
	}

	normalizedPDF, err := openInput(ctx, j, deps, workspace, sender)
	if err != nil {
		return nil, err
	}

	if cancelled(ctx, stop) {
		return nil, nil
	}

	pagePaths, cancelledMidPages, err := rasterizeAndTransform(ctx, j, deps, workspace, normalizedPDF, sender, stop)
	if err != nil {
		return nil, err
	}
	if cancelledMidPages {
		return nil, nil
	}

	if cancelled(ctx, stop) {
		return nil, nil
	}

	combinedPath := filepath.Join(workspace.dir, "combined.pdf")
	if err := combiner.Combine(pagePaths, combinedPath, j.Options.EncryptPassword); err != nil {
		return nil, err
	}
	sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangeCombine.Max, Message: "combined pages into output document"})

	if cancelled(ctx, stop) {
		return nil, nil
	}

	outputPath := finalOutputPath(j)
	if err := moveToDestination(combinedPath, outputPath); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	sender.Send(progress.Event{
		Kind:    progress.JobProgress,
		JobID:   j.ID,
		Index:   j.Index,
		Percent: rangeFinalize.Max,
		Message: elapsedTimeMessage(elapsed),
	})

	return &outputPath, nil
}

func cancelled(ctx context.Context, stop *StopFlag) bool {
	if stop != nil && stop.Requested() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// openInput handles OpeningInput [0..20%]: PDF direct-copy-or-decrypt,
// image → passed through unchanged for a single-page pass in the rasterize
// stage, ebook and office formats → converted to PDF by the office engine.
func openInput(ctx context.Context, j job.Job, deps Deps, ws *workspace, sender progress.Sender) (string, error) {
	sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: 0, Message: "detecting input format"})

	kind, err := detector.Detect(j.InputPath)
	if err != nil {
		return "", err
	}

	sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangeOpening.At(0.25), Message: "normalizing input to PDF"})

	switch kind.Family {
	case detector.Pdf:
		normalized := filepath.Join(ws.dir, "normalized.pdf")
		if err := copyOrDecrypt(j.InputPath, normalized, j.Options.DecryptPassword); err != nil {
			return "", err
		}
		sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangeOpening.Max, Message: "input ready"})
		return normalized, nil

	case detector.Image, detector.Ebook:
		// Images and ebooks have no native "open as PDF" step here; the
		// rasterizer stage treats the original path directly for images,
		// and ebook-to-PDF conversion is handled by the office engine the
		// same way legacy office formats are (a maintained ebook
		// renderer is outside this pack's dependency surface).
		if kind.Family == detector.Ebook {
			normalized := filepath.Join(ws.dir, "normalized.pdf")
			if err := deps.OfficeEngine.ConvertToPDF(ctx, j.InputPath, normalized, j.Options.DecryptPassword); err != nil {
				return "", err
			}
			sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangeOpening.Max, Message: "input ready"})
			return normalized, nil
		}
		sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangeOpening.Max, Message: "input ready"})
		return j.InputPath, nil

	case detector.Office:
		normalized := filepath.Join(ws.dir, "normalized.pdf")
		if err := deps.OfficeEngine.ConvertToPDF(ctx, j.InputPath, normalized, j.Options.DecryptPassword); err != nil {
			return "", err
		}
		sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangeOpening.Max, Message: "input ready"})
		return normalized, nil

	default:
		return "", failure.NewUnsupportedKind(j.ID.String(), kind.Sub)
	}
}

// rasterizeAndTransform drives Rasterize → PageTransform(i) for every page,
// sampling cancellation at each page boundary. For an image input (no PDF
// to open), a single synthetic "page" is produced directly from the source
// bytes.
func rasterizeAndTransform(ctx context.Context, j job.Job, deps Deps, ws *workspace, normalizedPath string, sender progress.Sender, stop *StopFlag) ([]string, bool, error) {
	kind, _ := detector.Detect(j.InputPath)
	if kind.Family == detector.Image {
		return rasterizeImagePage(ctx, j, deps, ws, sender)
	}

	doc, err := rasterizer.Open(normalizedPath)
	if err != nil {
		return nil, false, err
	}
	defer doc.Close()

	n := doc.PageCount()
	pagePaths := make([]string, 0, n)

	for i := 0; i < n; i++ {
		if cancelled(ctx, stop) {
			return nil, true, nil
		}

		pct := rangePages.AtStep(i, n)
		sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: pct, Message: fmt.Sprintf("rendering page %d of %d", i+1, n)})

		png, err := doc.RenderPage(i, j.Options.Quality)
		if err != nil {
			return nil, false, err
		}

		pagePath := filepath.Join(ws.dir, fmt.Sprintf("page-%d.pdf", i+1))
		if err := transformPage(ctx, j, deps, png, pagePath, i+1, n, sender); err != nil {
			return nil, false, err
		}
		pagePaths = append(pagePaths, pagePath)
	}

	return pagePaths, false, nil
}

func rasterizeImagePage(ctx context.Context, j job.Job, deps Deps, ws *workspace, sender progress.Sender) ([]string, bool, error) {
	data, err := os.ReadFile(j.InputPath)
	if err != nil {
		return nil, false, failure.NewIo(j.ID.String(), j.InputPath, err)
	}

	sender.Send(progress.Event{Kind: progress.JobProgress, JobID: j.ID, Index: j.Index, Percent: rangePages.AtStep(0, 1), Message: "rendering page 1 of 1"})

	pagePath := filepath.Join(ws.dir, "page-1.pdf")
	if err := transformPage(ctx, j, deps, data, pagePath, 1, 1, sender); err != nil {
		return nil, false, err
	}
	return []string{pagePath}, false, nil
}

// transformPage is PageTransform(i): OCR when requested, else plain
// image-to-PDF wrap.
func transformPage(ctx context.Context, j job.Job, deps Deps, pngBytes []byte, outPath string, i, n int, sender progress.Sender) error {
	if j.Options.OCRRequested() {
		sender.Send(progress.Event{
			Kind:    progress.JobProgress,
			JobID:   j.ID,
			Index:   j.Index,
			Percent: rangePages.AtStep(i, n),
			Message: fmt.Sprintf("performing OCR on page %d", i),
		})
		return deps.OCREngine.WritePagePDF(ctx, pngBytes, j.Options.Languages(), outPath)
	}
	return imagewriter.WritePagePDF(pngBytes, outPath)
}

// finalOutputPath returns the caller-requested output path unchanged when
// one is set; otherwise it derives one from the input path by replacing its
// extension with the job's suffix (defaulting to -entrusted) plus ".pdf".
func finalOutputPath(j job.Job) string {
	if j.OutputPath != "" {
		return j.OutputPath
	}
	suffix := j.Options.Suffix
	if suffix == "" {
		suffix = job.DefaultSuffix
	}
	ext := filepath.Ext(j.InputPath)
	base := j.InputPath[:len(j.InputPath)-len(ext)]
	return base + suffix + ".pdf"
}

func moveToDestination(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return failure.NewIo("", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err != nil {
		// Cross-device rename fails with a distinct error; fall back to
		// copy+remove, matching move_file_to_dir's behavior in
		// original_source.
		if err := copyFile(src, dst); err != nil {
			return failure.NewIo("", dst, err)
		}
		os.Remove(src)
	}
	// Best-effort atime/mtime refresh to "now"; errors are discarded, never
	// logged or surfaced, per spec's Open Question (a).
	now := time.Now()
	_ = os.Chtimes(dst, now, now)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	buf := make([]byte, 64*1024)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return rerr
		}
	}
}

func copyOrDecrypt(src, dst, password string) error {
	if password == "" {
		return copyFile(src, dst)
	}
	// Copy first, then decrypt the copy in place with pdfcpu, so the
	// caller's input is never modified. A wrong password surfaces here as
	// InvalidInput, before rasterization.
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := decryptInPlace(dst, password); err != nil {
		return err
	}
	return nil
}

func elapsedTimeMessage(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("Elapsed time: %dh %dm %ds", h, m, s)
}
