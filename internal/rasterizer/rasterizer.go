// Package rasterizer renders each page of an opened PDF to a fixed-geometry
// image. Grounded on other_examples' Nitro-lazypdf faster_raster.go (a
// MuPDF-based Go page rasterizer) for the rendering engine, paired with
// pdfcpu for page counting since pdfcpu itself has no rendering engine.
package rasterizer

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/image/draw"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
	"github.com/rimerosolutions/entrusted-go/internal/job"
)

// a4WidthPoints and a4HeightPoints are A4 at 72 points/inch, the bounding
// box this implementation uniformly applies for every page of a job, per
// spec's Open Question (b): the A4-bounding-box interpretation of visual
// quality rather than raw per-page DPI.
const (
	a4WidthPoints  = 595.28
	a4HeightPoints = 841.89
	pointsPerInch  = 72.0
)

// targetPixels computes the (width, height) pixel bounding box for a
// quality preset applied to the A4 page size.
func targetPixels(q job.VisualQuality) (int, int) {
	dpi := float64(q.DPI())
	w := int(math.Round(a4WidthPoints / pointsPerInch * dpi))
	h := int(math.Round(a4HeightPoints / pointsPerInch * dpi))
	return w, h
}

// Document wraps an opened PDF ready for page-by-page rasterization.
type Document struct {
	doc       *fitz.Document
	pageCount int
}

// Open opens path with go-fitz and cross-checks the page count against
// pdfcpu's PageCountFile, used to size the rasterization progress slice.
// Fails with InvalidInput for a 0-page document (spec's boundary behavior:
// "0-page input: opener fails with InvalidInput, never reaches
// rasterizer").
func Open(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, failure.NewInvalidInput("", "failed to open PDF for rasterization", err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		count = doc.NumPage()
	}
	if count == 0 {
		doc.Close()
		return nil, failure.NewInvalidInput("", "document has no pages", nil)
	}

	return &Document{doc: doc, pageCount: count}, nil
}

// PageCount returns the number of pages the opener reported.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}

// RenderPage renders page i (0-based) at a uniform scale that fits it
// within the quality preset's target bounding box, anti-aliased, and
// returns PNG-encoded bytes. Malformed pages fail with a RuntimeError; pages
// beyond the reported count are never attempted by callers iterating
// [0, PageCount()).
func (d *Document) RenderPage(i int, quality job.VisualQuality) ([]byte, error) {
	if i < 0 || i >= d.pageCount {
		return nil, failure.NewRuntimeError("", "page index out of range", nil)
	}

	targetW, targetH := targetPixels(quality)

	img, err := d.doc.ImageDPI(i, float64(quality.DPI()))
	if err != nil {
		return nil, failure.NewRuntimeError("", "failed to render page", err)
	}

	img = fitToBox(img, targetW, targetH)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, failure.NewRuntimeError("", "failed to encode rendered page", err)
	}
	return buf.Bytes(), nil
}

// fitToBox computes a uniform scale factor that fits img within maxW x maxH
// and resamples it with a bilinear filter, per spec's §4.4. A page whose
// source dimensions already fit (the common case, since ImageDPI already
// renders at the quality preset's DPI) passes through unchanged; a
// wider-than-A4 source page — e.g. a landscape scan — is scaled down so no
// dimension exceeds the target box, preserving aspect ratio.
func fitToBox(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= maxW && srcH <= maxH {
		return img
	}

	scale := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	dstW := int(math.Round(float64(srcW) * scale))
	dstH := int(math.Round(float64(srcH) * scale))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
