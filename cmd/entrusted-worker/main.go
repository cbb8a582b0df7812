/**
 * Entrusted Worker - Main Entry Point
 *
 * Host-side batch driver: owns the sandbox driver (container or native),
 * the progress bus fan-out to subscribers, and the batch scheduler. Linked
 * against by a GUI/CLI/web-server front end (all out of this core's scope);
 * this binary is a thin demonstration driver over a list of input paths
 * given as positional arguments, following the worker's own
 * config → collaborators → start → graceful-shutdown wiring sequence.
 * The selected sandbox runtime is installed, but the scheduler runs each
 * job through the executor in this process, not through that runtime.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rimerosolutions/entrusted-go/internal/config"
	"github.com/rimerosolutions/entrusted-go/internal/executor"
	"github.com/rimerosolutions/entrusted-go/internal/job"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
	"github.com/rimerosolutions/entrusted-go/internal/ocr"
	"github.com/rimerosolutions/entrusted-go/internal/office"
	"github.com/rimerosolutions/entrusted-go/internal/progress"
	"github.com/rimerosolutions/entrusted-go/internal/sandbox"
	"github.com/rimerosolutions/entrusted-go/internal/scheduler"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logging.NewLogger("entrusted-worker")
	appLog.Info("Entrusted worker starting", "native_runtime", cfg.NativeRuntime)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: entrusted-worker <input-file>...")
		os.Exit(2)
	}

	runtime, err := sandbox.Select(cfg, selfPath(), appLog)
	if err != nil {
		appLog.Error("no sandbox runtime available", "error", err)
		os.Exit(1)
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	if err := runtime.Install(ctx, progress.NoopSender{}); err != nil {
		appLog.Error("sandbox install failed", "error", err)
		os.Exit(1)
	}

	deps := executor.Deps{
		OCREngine:    ocr.NewEngine(cfg.TesseractTessdataDir),
		OfficeEngine: office.Get(cfg.LibreOfficeProgramDir, appLog),
		TessdataDir:  cfg.TesseractTessdataDir,
	}

	jobs := make([]job.Job, 0, len(os.Args)-1)
	for i, path := range os.Args[1:] {
		jobs = append(jobs, job.NewJob(i, path, outputPathFor(path), job.JobOptions{
			DecryptPassword: cfg.DocPassword,
			Quality:         job.Medium,
		}))
	}

	sender, events := progress.NewChannelSender(appLog)
	stop := executor.NewStopFlag()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range events {
			logEvent(appLog, e)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		appLog.Info("received signal, requesting cancellation", "signal", sig.String())
		stop.Request()
		cancelCtx()
	}()

	appLog.Info("===========================================")
	appLog.Info("Entrusted worker is READY")
	appLog.Info("Jobs in batch", "count", len(jobs))
	appLog.Info("===========================================")

	results := scheduler.Run(ctx, jobs, deps, sender, stop, appLog)
	sender.Close()
	<-done

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else if !r.Cancelled {
			succeeded++
		}
	}
	appLog.Info("batch finished", "succeeded", succeeded, "failed", failed, "total", len(jobs))

	if failed > 0 {
		os.Exit(1)
	}
}

func logEvent(l *logging.Logger, e progress.Event) {
	switch e.Kind {
	case progress.JobStarted:
		l.Info("job started", "index", e.Index)
	case progress.JobProgress:
		l.Debug("job progress", "percent", e.Percent, "message", e.Message)
	case progress.JobFinished:
		l.Info("job finished", "index", e.Index, "cancelled", e.OutputPath == nil)
	case progress.JobFailed:
		l.Warn("job failed", "index", e.Index)
	case progress.BatchCompleted:
		l.Info("batch completed", "succeeded", e.Succeeded, "failed", e.Failed, "total", e.Total)
	}
}

func outputPathFor(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	return base + job.DefaultSuffix + ".pdf"
}

func selfPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "entrusted-sanitize"
	}
	return filepath.Join(filepath.Dir(exe), "entrusted-sanitize")
}
