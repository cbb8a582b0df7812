package sandbox

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
)

// NativeRuntime execs cmd/entrusted-sanitize directly, no container. Used
// when already inside a confined host runtime where spawning an outer
// container is unavailable (e.g. a Flatpak sandbox, generalized here to
// ENTRUSTED_NATIVE_RUNTIME=1). Install is a no-op.
type NativeRuntime struct {
	ExecutablePath string // path to the entrusted-sanitize binary
	Log            *logging.Logger
}

func NewNativeRuntime(execPath string, log *logging.Logger) *NativeRuntime {
	return &NativeRuntime{ExecutablePath: execPath, Log: log}
}

func (r *NativeRuntime) Install(ctx context.Context, sender progress.Sender) error {
	return nil
}

func (r *NativeRuntime) Process(ctx context.Context, input, output string, opts ConvertOptions, sender progress.Sender) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return failure.NewIo("", filepath.Dir(output), err)
	}

	args := []string{
		"--input-filename", input,
		"--output-filename", output,
	}
	if opts.OCRLanguages != "" {
		args = append(args, "--ocr-lang", opts.OCRLanguages)
	}
	args = append(args, "--visual-quality", opts.Quality.String())
	args = append(args, "--log-format", opts.LogFormat.String())

	cmd := exec.CommandContext(ctx, r.ExecutablePath, args...)
	cmd.Env = append(os.Environ(), "ENTRUSTED_LANGID="+opts.LangID)
	if opts.DocPassword != "" {
		cmd.Env = append(cmd.Env, "ENTRUSTED_DOC_PASSWD="+opts.DocPassword)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failure.NewRuntimeError("", "failed to attach stdout", err)
	}
	var stderr io.ReadCloser
	if opts.CaptureStderr {
		stderr, err = cmd.StderrPipe()
		if err != nil {
			return failure.NewRuntimeError("", "failed to attach stderr", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return failure.NewRuntimeError("", "failed to start native sandbox", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go readNativeProgressLines(stdout, opts.LogFormat, sender, &wg)
	if stderr != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanner := bufio.NewScanner(stderr)
			for scanner.Scan() {
				r.Log.Debug("sandbox stderr", "line", scanner.Text())
			}
		}()
	}
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return failure.NewRuntimeError("", classifyExit(exitErr.ExitCode()), err)
		}
		return failure.NewRuntimeError("", "native sandbox process error", err)
	}
	return nil
}

func readNativeProgressLines(r io.Reader, format interface{ String() string }, sender progress.Sender, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		pct, msg, ok := parseProgressLine(scanner.Text(), format.String())
		if !ok {
			continue
		}
		if err := sender.Send(progress.Event{Kind: progress.JobProgress, Percent: pct, Message: msg}); err != nil {
			return
		}
	}
}
