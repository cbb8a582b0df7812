package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENTRUSTED_MAX_FILE_SIZE", "")
	t.Setenv("ENTRUSTED_WORKER_TEMPDIR", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.LangID != "en" {
		t.Errorf("LangID = %q, want \"en\"", cfg.LangID)
	}
	if cfg.TesseractTessdataDir != "/usr/share/tessdata" {
		t.Errorf("TesseractTessdataDir = %q, want default", cfg.TesseractTessdataDir)
	}
	if !cfg.SeccompEnabled {
		t.Error("SeccompEnabled = false, want true by default")
	}
}

func TestValidateRejectsTinyMaxFileSize(t *testing.T) {
	cfg := &Config{MaxFileSize: 10, WorkerTempDir: "/tmp"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for tiny MaxFileSize")
	}
}

func TestSeccompEnvOverride(t *testing.T) {
	t.Setenv("ENTRUSTED_AUTOMATED_SECCOMP_ENABLEMENT", "false")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SeccompEnabled {
		t.Error("SeccompEnabled = true, want false per env override")
	}
}
