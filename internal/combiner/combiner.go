// Package combiner reads page-1.pdf … page-N.pdf, merges them preserving
// page order, and optionally encrypts the result. Grounded on spec's §4.6
// and original_source's merge_pdfs (PdfDocument page-grafting plus
// Permission::ACCESSIBILITY|PRINT|COPY|ANNOTATE), rendered onto pdfcpu's
// MergeCreateFile and EncryptFile.
package combiner

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
)

// Combine merges pagePaths (expected to be page-1.pdf … page-N.pdf in
// order) into outPath, written with object streams and a cross-reference
// stream; no garbage-collection level or pretty-print setting is applied
// beyond pdfcpu's defaults. When password is non-empty, the
// output is encrypted AES-256 with identical owner/user passwords and a
// permissions mask allowing print/copy/annotate/accessibility only.
func Combine(pagePaths []string, outPath, password string) error {
	if len(pagePaths) == 0 {
		return failure.NewInvalidInput("", "no pages to combine", nil)
	}

	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true

	if err := api.MergeCreateFile(pagePaths, outPath, conf); err != nil {
		return failure.NewRuntimeError("", "failed to merge pages into output PDF", err)
	}

	if password != "" {
		if err := encrypt(outPath, password); err != nil {
			return err
		}
	}

	if _, err := os.Stat(outPath); err != nil {
		return failure.NewIo("", outPath, err)
	}
	return nil
}

// encrypt applies AES-256 encryption in place with a permission mask
// allowing {Print, Copy, Annotate, Accessibility} and denying content
// modification and form-filling, per spec's §4.6.
func encrypt(path, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.EncryptUsingAES = true
	conf.EncryptKeyLength = 256
	conf.Permissions = model.PermissionsPrint | model.PermissionExtract |
		model.PermissionModAnnFillForm | model.PermissionExtractRev3

	tmpOut := path + ".encrypting"
	if err := api.EncryptFile(path, tmpOut, conf); err != nil {
		return failure.NewRuntimeError("", fmt.Sprintf("failed to encrypt %s", path), err)
	}
	if err := os.Rename(tmpOut, path); err != nil {
		return failure.NewIo("", path, err)
	}
	return nil
}
