package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/inboxflow/internal/config"
	"github.com/teemow/inboxflow/internal/engine"
	"github.com/teemow/inboxflow/internal/instrumentation"
	"github.com/teemow/inboxflow/internal/llm"
	"github.com/teemow/inboxflow/internal/prompts"
	"github.com/teemow/inboxflow/internal/store"
)

// ServerContext holds the shared dependencies for the web and MCP
// servers: the store, the processing engine, and instrumentation.
// The LLM client is created lazily; a missing API key disables the
// assistant operations but leaves the stored data browsable.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg       config.Settings
	store     *store.Store
	prompts   *prompts.Service
	engine    *engine.Engine
	engineErr error

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext opens the store, seeds the default prompts, and
// builds the engine when the provider configuration is valid.
func NewServerContext(ctx context.Context, cfg config.Settings) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	promptSvc := prompts.NewService(s)
	if err := promptSvc.EnsureLoaded(); err != nil {
		cancel()
		_ = s.Close()
		return nil, fmt.Errorf("failed to load default prompts: %w", err)
	}

	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		store:   s,
		prompts: promptSvc,
	}
	sc.initEngine(shutdownCtx)
	return sc, nil
}

// initEngine builds the engine when the provider is configured. The
// error is kept so assistant endpoints can report it.
func (sc *ServerContext) initEngine(ctx context.Context) {
	if err := sc.cfg.Validate(); err != nil {
		sc.engineErr = err
		return
	}
	client, err := llm.New(ctx, sc.cfg)
	if err != nil {
		sc.engineErr = err
		return
	}
	sc.engine = engine.New(sc.store, client, sc.prompts,
		engine.WithMaxTokens(sc.cfg.MaxTokens))
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded settings.
func (sc *ServerContext) Config() config.Settings {
	return sc.cfg
}

// Store returns the local store.
func (sc *ServerContext) Store() *store.Store {
	return sc.store
}

// Prompts returns the prompt service.
func (sc *ServerContext) Prompts() *prompts.Service {
	return sc.prompts
}

// Engine returns the processing engine, or an error when the LLM
// provider is not configured.
func (sc *ServerContext) Engine() (*engine.Engine, error) {
	if sc.engine == nil {
		if sc.engineErr != nil {
			return nil, fmt.Errorf("assistant not configured: %w", sc.engineErr)
		}
		return nil, fmt.Errorf("assistant not configured")
	}
	return sc.engine, nil
}

// SetEngine replaces the engine. Used by tests and by callers that
// build the engine with extra options.
func (sc *ServerContext) SetEngine(e *engine.Engine) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.engine = e
	sc.engineErr = nil
}

// SetMetrics sets the metrics recorder for tool and HTTP instrumentation
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
	if sc.engine != nil {
		sc.engine = engine.New(sc.store, sc.engine.LLM(), sc.prompts,
			engine.WithMaxTokens(sc.cfg.MaxTokens),
			engine.WithMetrics(m))
	}
}

// Metrics returns the metrics recorder (may be nil if not configured)
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger (may be nil if not configured)
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and closes the store.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return sc.store.Close()
}
