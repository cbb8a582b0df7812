package executor

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
)

// decryptInPlace removes password protection from path using pdfcpu's
// DecryptFile, surfacing a wrong password as InvalidInput per spec's
// boundary behavior ("Wrong decryption password for an encrypted PDF:
// InvalidInput(\"wrong password\") before rasterization").
func decryptInPlace(path, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	tmpOut := path + ".decrypting"
	if err := api.DecryptFile(path, tmpOut, conf); err != nil {
		return failure.NewInvalidInput("", "wrong password", err)
	}
	if err := os.Rename(tmpOut, path); err != nil {
		return failure.NewIo("", path, err)
	}
	return nil
}
