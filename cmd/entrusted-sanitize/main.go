// Command entrusted-sanitize is the in-sandbox executable: what the sandbox
// driver execs, containerized or native. It owns format detection,
// rasterization, OCR/wrap, combine, and office conversion for exactly one
// job, and speaks the line-oriented progress protocol on stdout described
// in the external interfaces design (flag parsing here is a direct
// flag.FlagSet, not a full CLI framework, since argument-parsing UX is
// explicitly out of scope for this core).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rimerosolutions/entrusted-go/internal/executor"
	"github.com/rimerosolutions/entrusted-go/internal/job"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
	"github.com/rimerosolutions/entrusted-go/internal/ocr"
	"github.com/rimerosolutions/entrusted-go/internal/office"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
)

func main() {
	inputFilename := flag.String("input-filename", "/tmp/input_file", "host-visible input path")
	outputFilename := flag.String("output-filename", "/safezone/safe-output-compressed.pdf", "output path inside the safezone")
	ocrLang := flag.String("ocr-lang", "", "+-separated OCR language codes, empty disables OCR")
	visualQuality := flag.String("visual-quality", "medium", "low|medium|high")
	logFormat := flag.String("log-format", "plain", "plain|json")
	flag.Parse()

	format := job.ParseLogFormat(*logFormat)
	encoder := newLineEncoder(format)

	log := logging.NewLogger("entrusted-sanitize")

	tessdataDir := getEnvOrDefault("ENTRUSTED_TESSERACT_TESSDATA_DIR", "/usr/share/tessdata")
	officeDir := os.Getenv("ENTRUSTED_LIBREOFFICE_PROGRAM_DIR")
	langID := getEnvOrDefault("ENTRUSTED_LANGID", "en")
	docPassword := os.Getenv("ENTRUSTED_DOC_PASSWD")

	deps := executor.Deps{
		OCREngine:    ocr.NewEngine(tessdataDir),
		OfficeEngine: office.Get(officeDir, log),
		TessdataDir:  tessdataDir,
	}

	j := job.NewJob(0, *inputFilename, *outputFilename, job.JobOptions{
		DecryptPassword: docPassword,
		OCRLanguages:    *ocrLang,
		Quality:         job.ParseVisualQuality(*visualQuality),
		LogFormat:       format,
	})
	_ = langID // consumed by the translator layer, out of this core's scope

	sender := progress.NewCallbackSender(func(e progress.Event) {
		if e.Kind != progress.JobProgress {
			return
		}
		fmt.Fprint(os.Stdout, encoder(e.Percent, e.Message))
	})

	stop := executor.NewStopFlag()
	outputPath, err := executor.Sanitize(context.Background(), j, deps, sender, stop)

	switch {
	case err != nil:
		fmt.Fprint(os.Stdout, encoder(100, err.Error()))
		log.Error("sanitize failed", "error", err)
		os.Exit(1)
	case outputPath == nil:
		fmt.Fprint(os.Stdout, encoder(100, "cancelled"))
		os.Exit(0)
	default:
		fmt.Fprint(os.Stdout, encoder(100, "done"))
		os.Exit(0)
	}
}

// newLineEncoder returns the stdout line formatter matching spec's
// plain/json protocol: plain is "<pct>% <text>\n"; json is one object per
// line {"percent_complete": <int>, "data": "<text>"}.
func newLineEncoder(format job.LogFormat) func(pct int, text string) string {
	if format == job.Json {
		return func(pct int, text string) string {
			b, _ := json.Marshal(struct {
				PercentComplete int    `json:"percent_complete"`
				Data            string `json:"data"`
			}{pct, text})
			return string(b) + "\n"
		}
	}
	return func(pct int, text string) string {
		return fmt.Sprintf("%d%% %s\n", pct, text)
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
