package sandbox

import (
	"github.com/rimerosolutions/entrusted-go/internal/config"
	"github.com/rimerosolutions/entrusted-go/internal/logging"
)

// Select picks Native or Containerized per cfg.NativeRuntime (the
// generalized ENTRUSTED_NATIVE_RUNTIME override of the original's
// FLATPAK_ID-presence check), falling back with an OS-specific install hint
// when no container runtime is found and native wasn't requested.
func Select(cfg *config.Config, nativeExecPath string, log *logging.Logger) (Runtime, error) {
	if cfg.NativeRuntime {
		return NewNativeRuntime(nativeExecPath, log), nil
	}
	return NewContainerRuntime(cfg.ContainerEngine, cfg.ContainerImage, cfg.SeccompEnabled, log)
}
