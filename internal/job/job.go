// Package job holds the data types shared by the conversion executor, the
// batch scheduler and the in-sandbox entrypoint: a Job, its visual-quality
// knob, and the options bundle that travels between cmd/entrusted-worker and
// cmd/entrusted-sanitize.
package job

import (
	"strings"

	"github.com/google/uuid"
)

// VisualQuality selects the rasterization DPI preset for a job.
type VisualQuality int

const (
	Low VisualQuality = iota
	Medium
	High
)

// DPI returns the nominal dots-per-inch for the preset.
func (q VisualQuality) DPI() int {
	switch q {
	case Low:
		return 96
	case High:
		return 300
	default:
		return 150
	}
}

// String renders the flag-compatible spelling used by --visual-quality.
func (q VisualQuality) String() string {
	switch q {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "medium"
	}
}

// ParseVisualQuality parses the --visual-quality flag value, defaulting to
// Medium for anything unrecognized.
func ParseVisualQuality(s string) VisualQuality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low
	case "high":
		return High
	default:
		return Medium
	}
}

// LogFormat selects the encoding of progress lines written to stdout by the
// in-sandbox executable.
type LogFormat int

const (
	Plain LogFormat = iota
	Json
)

func ParseLogFormat(s string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return Json
	}
	return Plain
}

func (f LogFormat) String() string {
	if f == Json {
		return "json"
	}
	return "plain"
}

// JobOptions groups the per-job knobs that travel with a Job between the
// worker and the sandboxed executable: decrypt/encrypt passwords, OCR
// languages, quality, output filename suffix, and log format. Kept as its
// own struct (rather than inlined into Job) so both the in-process call
// shape and the CLI-flag wire shape share one definition.
type JobOptions struct {
	DecryptPassword string
	EncryptPassword string
	OCRLanguages    string // "+"-separated three-letter codes, empty disables OCR
	Quality         VisualQuality
	Suffix          string
	LogFormat       LogFormat
}

// DefaultSuffix is appended to the input's base name when the caller does
// not supply one.
const DefaultSuffix = "-entrusted"

// Languages splits the "+"-separated OCR language specifier into its parts.
// Returns nil when OCR was not requested.
func (o JobOptions) Languages() []string {
	if strings.TrimSpace(o.OCRLanguages) == "" {
		return nil
	}
	return strings.Split(o.OCRLanguages, "+")
}

// OCRRequested reports whether this job should run pages through OCR rather
// than the plain image-to-PDF wrap path.
func (o JobOptions) OCRRequested() bool {
	return len(o.Languages()) > 0
}

// Job is a unit of work: one input document sanitized into one output PDF.
// Its ID is unique among in-flight and historical jobs within the process,
// per spec — backed by a fresh UUIDv4 per job.
type Job struct {
	ID         uuid.UUID
	Index      int // position within the batch, used by JobStarted/JobFinished/JobFailed
	InputPath  string
	OutputPath string
	Options    JobOptions
}

// NewJob builds a Job with a fresh identifier.
func NewJob(index int, inputPath, outputPath string, opts JobOptions) Job {
	return Job{
		ID:         uuid.New(),
		Index:      index,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Options:    opts,
	}
}
