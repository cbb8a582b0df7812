package sandbox

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
)

//go:embed seccomp-entrusted-profile.json
var embeddedSeccompProfile []byte

// seccompProfileVersion is bumped whenever the embedded profile above
// changes shape, so upgrades never collide with a stale profile written to
// disk by an earlier install (design note "system-call filter
// materialization").
const seccompProfileVersion = "1"

const containerImageFilename = "entrusted-container"

// ContainerRuntime drives an OCI runtime (docker or podman) to run the
// in-sandbox executable with hardened flags. Grounded on
// container.rs's ContainerizedSanitizerRt.
type ContainerRuntime struct {
	Engine        string // "docker" or "podman"
	Image         string
	SeccompEnabled bool
	Log           *logging.Logger

	profilePathOnce sync.Once
	profilePath     string
	profileErr      error
}

// NewContainerRuntime resolves the container engine binary, preferring an
// explicit override, falling back to probing docker then podman on PATH.
func NewContainerRuntime(engineOverride, image string, seccompEnabled bool, log *logging.Logger) (*ContainerRuntime, error) {
	engine := engineOverride
	if engine == "" {
		for _, candidate := range []string{"docker", "podman"} {
			if _, err := exec.LookPath(candidate); err == nil {
				engine = candidate
				break
			}
		}
	}
	if engine == "" {
		hint := installHintForOS()
		return nil, failure.NewSandboxUnavailable(hint, nil)
	}
	return &ContainerRuntime{Engine: engine, Image: image, SeccompEnabled: seccompEnabled, Log: log}, nil
}

func installHintForOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "install Docker Desktop for Mac"
	case "windows":
		return "install Docker Desktop for Windows"
	default:
		return "install Docker or Podman"
	}
}

// Install probes for the image with an inspect subcommand; on miss, pulls
// it and emits progress at 1% and 5% per spec.
func (r *ContainerRuntime) Install(ctx context.Context, sender progress.Sender) error {
	inspect := exec.CommandContext(ctx, r.Engine, "image", "inspect", r.Image)
	if err := inspect.Run(); err == nil {
		return nil // already present
	}

	sender.Send(progress.Event{Kind: progress.JobProgress, Percent: 1, Message: "pulling sandbox image"})

	pull := exec.CommandContext(ctx, r.Engine, "pull", r.Image)
	out, err := pull.CombinedOutput()
	if err != nil {
		return failure.NewSandboxUnavailable(fmt.Sprintf("failed to pull %s: %s", r.Image, string(out)), err)
	}

	sender.Send(progress.Event{Kind: progress.JobProgress, Percent: 5, Message: "sandbox image ready"})
	return nil
}

func (r *ContainerRuntime) materializeSeccompProfile(tempDir string) (string, error) {
	r.profilePathOnce.Do(func() {
		path := filepath.Join(tempDir, fmt.Sprintf("entrusted-seccomp-%s.json", seccompProfileVersion))
		if _, err := os.Stat(path); err == nil {
			r.profilePath = path
			return
		}
		if err := os.WriteFile(path, embeddedSeccompProfile, 0o644); err != nil {
			r.profileErr = err
			return
		}
		r.profilePath = path
	})
	return r.profilePath, r.profileErr
}

// Process runs one conversion inside the container. Builds the argv shape
// spec.md §4.3 describes, streams stdout/stderr line-by-line into sender,
// classifies the exit code, and on success moves the container's
// safe-output-compressed.pdf from the safezone to output.
func (r *ContainerRuntime) Process(ctx context.Context, input, output string, opts ConvertOptions, sender progress.Sender) error {
	safezoneDir := filepath.Dir(output)
	if err := os.MkdirAll(safezoneDir, 0o777); err != nil {
		return failure.NewIo("", safezoneDir, err)
	}
	// chmod 0o777 on non-Windows to sidestep UID-mapping issues with some
	// container runtimes, per spec.md §4.3.
	if runtime.GOOS != "windows" {
		_ = os.Chmod(safezoneDir, 0o777)
	}

	actualInput, cleanupInput, err := r.materializeInputIfNeeded(input)
	if err != nil {
		return err
	}
	defer cleanupInput()

	args := []string{"run", "--rm", "--network", "none", "--cap-drop", "all"}

	if r.SeccompEnabled {
		profilePath, err := r.materializeSeccompProfile(os.TempDir())
		if err != nil {
			r.Log.Warn("failed to materialize seccomp profile, continuing without it", "error", err)
		} else {
			args = append(args, "--security-opt", "seccomp="+profilePath)
		}
	}

	const containerInputPath = "/tmp/input_file"
	const containerSafezone = "/safezone"

	args = append(args,
		"-v", actualInput+":"+containerInputPath+":Z",
		"-v", safezoneDir+":"+containerSafezone+":Z",
		"-e", "ENTRUSTED_LANGID="+opts.LangID,
	)
	if opts.DocPassword != "" {
		args = append(args, "-e", "ENTRUSTED_DOC_PASSWD="+opts.DocPassword)
	}
	args = append(args, r.Image, containerImageFilename)
	args = append(args,
		"--input-filename", containerInputPath,
		"--output-filename", filepath.Join(containerSafezone, "safe-output-compressed.pdf"),
	)
	if opts.OCRLanguages != "" {
		args = append(args, "--ocr-lang", opts.OCRLanguages)
	}
	args = append(args, "--visual-quality", opts.Quality.String())
	args = append(args, "--log-format", logFormatFlag(opts.LogFormat))

	r.Log.Debug("running sandbox", "cmd", maskPassword(r.Engine+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, r.Engine, args...)
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
		return failure.NewRuntimeError("", "failed to start sandbox", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go readProgressLines(stdout, opts.LogFormat, sender, &wg)
	if stderr != nil {
		wg.Add(1)
		go readStderrLines(stderr, r.Log, &wg)
	}
	wg.Wait()

	err = cmd.Wait()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			return failure.NewRuntimeError("", classifyExit(code), err)
		}
		return failure.NewRuntimeError("", "sandbox process error", err)
	}

	produced := filepath.Join(safezoneDir, "safe-output-compressed.pdf")
	if produced != filepath.Clean(output) {
		if err := os.Rename(produced, output); err != nil {
			return failure.NewIo("", output, err)
		}
	}
	return nil
}

func logFormatFlag(f interface{ String() string }) string {
	return f.String()
}

// materializeInputIfNeeded copies the input under the runtime's suggested
// temp directory when the host temp dir isn't mountable by the runtime (the
// Lima/remote-Docker-VM compatibility case), and always deletes the copy on
// return, never the caller's original input.
func (r *ContainerRuntime) materializeInputIfNeeded(input string) (string, func(), error) {
	if !requiresTempCopy() {
		return input, func() {}, nil
	}

	tmp, err := os.CreateTemp("", "entrusted-input-*")
	if err != nil {
		return "", func() {}, failure.NewIo("", input, err)
	}
	src, err := os.Open(input)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", func() {}, failure.NewIo("", input, err)
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", func() {}, failure.NewIo("", input, err)
	}
	tmp.Close()

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// requiresTempCopy reports whether the current environment is a known
// remote-VM Docker setup (Lima on macOS) where bind-mounting the system
// temp dir directly doesn't work.
func requiresTempCopy() bool {
	return os.Getenv("ENTRUSTED_LIMA_WORKAROUND") != ""
}

func readProgressLines(r io.Reader, format interface{ String() string }, sender progress.Sender, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		pct, msg, ok := parseProgressLine(line, format.String())
		if !ok {
			continue
		}
		if err := sender.Send(progress.Event{Kind: progress.JobProgress, Percent: pct, Message: msg}); err != nil {
			return // subscriber gone; subprocess will finish on its own
		}
	}
}

func readStderrLines(r io.Reader, log *logging.Logger, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		log.Debug("sandbox stderr", "line", scanner.Text())
	}
}

func parseProgressLine(line, format string) (int, string, bool) {
	if format == "json" {
		return parseJSONProgressLine(line)
	}
	return parsePlainProgressLine(line)
}

func parsePlainProgressLine(line string) (int, string, bool) {
	idx := strings.Index(line, "% ")
	if idx <= 0 {
		return 0, "", false
	}
	pct, err := strconv.Atoi(line[:idx])
	if err != nil {
		return 0, "", false
	}
	return pct, line[idx+2:], true
}

func parseJSONProgressLine(line string) (int, string, bool) {
	// Deliberately minimal: {"percent_complete": N, "data": "..."} is the
	// only shape the sandboxed executable emits, so a tiny hand-rolled
	// parser avoids pulling in encoding/json for two fixed fields on a hot
	// per-line path.
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return 0, "", false
	}
	pctIdx := strings.Index(line, `"percent_complete"`)
	dataIdx := strings.Index(line, `"data"`)
	if pctIdx < 0 || dataIdx < 0 {
		return 0, "", false
	}
	colon := strings.Index(line[pctIdx:], ":")
	if colon < 0 {
		return 0, "", false
	}
	rest := strings.TrimLeft(line[pctIdx+colon+1:], " ")
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		return 0, "", false
	}
	pct, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return 0, "", false
	}
	dataColon := strings.Index(line[dataIdx:], ":")
	if dataColon < 0 {
		return 0, "", false
	}
	dataRest := strings.TrimLeft(line[dataIdx+dataColon+1:], " ")
	dataRest = strings.TrimPrefix(dataRest, `"`)
	if end := strings.LastIndex(dataRest, `"`); end >= 0 {
		dataRest = dataRest[:end]
	}
	return pct, dataRest, true
}

// maskPassword redacts ENTRUSTED_DOC_PASSWD=... in an echoed command line,
// per spec.md §4.3/§6.
func maskPassword(cmdline string) string {
	const marker = "ENTRUSTED_DOC_PASSWD="
	idx := strings.Index(cmdline, marker)
	if idx < 0 {
		return cmdline
	}
	end := strings.IndexByte(cmdline[idx+len(marker):], ' ')
	if end < 0 {
		return cmdline[:idx+len(marker)] + "****"
	}
	return cmdline[:idx+len(marker)] + "****" + cmdline[idx+len(marker)+end:]
}
