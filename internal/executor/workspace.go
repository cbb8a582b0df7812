package executor

import (
	"os"
	"path/filepath"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
)

// workspace is the per-job scratch directory, named by the job identifier,
// the executor owns for the job's lifetime with cleanup guaranteed on
// every exit path (success, failure, cancellation).
type workspace struct {
	dir string
}

func newWorkspace(jobID string) (*workspace, error) {
	dir := filepath.Join(os.TempDir(), "entrusted-"+jobID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, failure.NewIo(jobID, dir, err)
	}
	return &workspace{dir: dir}, nil
}

// cleanup removes the workspace directory. It is best-effort and never
// overrides the primary result: a removal error is discarded and is neither
// returned nor logged.
func (w *workspace) cleanup() {
	os.RemoveAll(w.dir)
}
