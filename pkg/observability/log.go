package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks forwards every event to a logger at debug level.
// It implements PatchHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to log.Default() if nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

var (
	_ PatchHooks = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
	_ HTTPHooks  = (*LogHooks)(nil)
)

func (h *LogHooks) OnRootStart(_ context.Context, manifest string) {
	h.logger.Debug("root start", "manifest", manifest)
}

func (h *LogHooks) OnVendorComplete(_ context.Context, vendorDir string, d time.Duration, err error) {
	h.logger.Debug("vendor complete", "dir", vendorDir, "duration", d, "err", err)
}

func (h *LogHooks) OnManifestStart(_ context.Context, manifest string) {
	h.logger.Debug("manifest start", "manifest", manifest)
}

func (h *LogHooks) OnManifestComplete(_ context.Context, manifest, step string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("manifest failed", "manifest", manifest, "step", step, "duration", d, "err", err)
		return
	}
	h.logger.Debug("manifest patched", "manifest", manifest, "duration", d)
}

func (h *LogHooks) OnRunComplete(_ context.Context, patched, failed, excluded int, d time.Duration) {
	h.logger.Debug("run complete", "patched", patched, "failed", failed, "excluded", excluded, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, key string)  { h.logger.Debug("cache hit", "key", key) }
func (h *LogHooks) OnCacheMiss(_ context.Context, key string) { h.logger.Debug("cache miss", "key", key) }
func (h *LogHooks) OnCacheSet(_ context.Context, key string)  { h.logger.Debug("cache set", "key", key) }

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
