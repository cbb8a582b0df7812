// Package sandbox abstracts the environment running the untrusted parser:
// either an OCI container with hardened flags, or a same-host process when
// already running inside an already-confined runtime. Grounded on
// original_source/app/entrusted_client/src/container.rs's SanitizerRt trait
// and its Containerized/Native implementations.
package sandbox

import (
	"context"

	"github.com/rimerosolutions/entrusted-go/internal/job"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
)

// Profile is the immutable per-invocation descriptor: program path, prefix
// argument list for subcommand selection, suggested run-arguments,
// suggested temporary directory, and an optional seccomp filter blob
// materialized to disk and referenced by the run.
type Profile struct {
	ProgramPath      string
	PrefixArgs       []string
	SuggestedRunArgs []string
	SuggestedTempDir string
	SeccompProfile   []byte // nil disables the filter
}

// ConvertOptions is what the sandbox driver needs to build a `process`
// invocation: the job's conversion knobs plus the translator's language id,
// carried separately from job.JobOptions because the driver only cares
// about the wire-visible subset (no encrypt password — that's consumed
// host-side by the combiner, never inside the sandbox).
type ConvertOptions struct {
	OCRLanguages string
	Quality      job.VisualQuality
	LogFormat    job.LogFormat
	LangID       string
	DocPassword  string // masked in echoed command lines
	CaptureStderr bool
}

// Runtime is the polymorphic contract both sandbox variants satisfy, so the
// executor never branches on kind (see design note "Polymorphism over
// sandbox kind").
type Runtime interface {
	// Install probes for (and if missing, pulls) whatever the runtime needs
	// before Process can succeed. A no-op for the native variant.
	Install(ctx context.Context, sender progress.Sender) error

	// Process runs one conversion: input path in, output path out.
	Process(ctx context.Context, input, output string, opts ConvertOptions, sender progress.Sender) error
}

// exitCode classifies a subprocess exit code per spec's policy: 137
// (SIGKILL, typically OOM) and 139 (SIGSEGV) get dedicated messages; any
// other non-zero is a generic failure.
type exitCode int

const (
	exitOOM       exitCode = 137
	exitSegfault  exitCode = 139
)

func classifyExit(code int) string {
	switch exitCode(code) {
	case exitOOM:
		return "container process terminated due to memory usage"
	case exitSegfault:
		return "container process memory-access fault"
	default:
		return "conversion failed"
	}
}
