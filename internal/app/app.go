package app

import (
	"context"
	"fmt"

	"github.com/learned-geek/socialpress/internal/authflow"
	"github.com/learned-geek/socialpress/internal/config"
	"github.com/learned-geek/socialpress/internal/logger"
	"github.com/learned-geek/socialpress/internal/pipeline"
	"github.com/learned-geek/socialpress/internal/storage"
	"github.com/learned-geek/socialpress/pkg/notifiers"
	"github.com/learned-geek/socialpress/pkg/platforms"
	"github.com/learned-geek/socialpress/pkg/platforms/facebook"
	"github.com/learned-geek/socialpress/pkg/platforms/instagram"
	"github.com/learned-geek/socialpress/pkg/renderer"
)

// App is the publisher runtime. It wires config, storage, platform adapters,
// the renderer client, result notifiers, the authorization flow, and the
// publish pipeline, and serves the HTTP surface.
type App struct {
	cfg      *config.Config
	log      logger.Logger
	store    storage.Store
	adapters *platforms.Registry
	auth     *authflow.Coordinator
	pipe     *pipeline.Service
}

// New builds the publisher runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		PublishedTTL:    cfg.PublishedTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	fbApp := cfg.Facebook()
	fb := facebook.New(facebook.Config{
		ClientID:     fbApp.ClientID,
		ClientSecret: fbApp.ClientSecret,
		RedirectURI:  fbApp.RedirectURI,
		GraphBaseURL: cfg.GraphBaseURL,
		Timeout:      cfg.HTTPTimeout,
	}, log)
	igApp := cfg.Instagram()
	ig := instagram.New(instagram.Config{
		ClientID:     igApp.ClientID,
		ClientSecret: igApp.ClientSecret,
		RedirectURI:  igApp.RedirectURI,
		GraphBaseURL: cfg.GraphBaseURL,
		Timeout:      cfg.HTTPTimeout,
		Poll:         platforms.PollPolicy{Attempts: cfg.PollAttempts, Delay: cfg.PollDelay},
	}, log)
	adapters := platforms.NewRegistry(fb, ig)

	configured := make([]string, 0, 2)
	for _, a := range adapters.All() {
		if a.IsConfigured() {
			configured = append(configured, a.ID())
		}
	}
	log.InfoObj("platform adapters registered", "platforms_meta", map[string]any{
		"configured": configured,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	rend := renderer.NewService(cfg.RendererURL, cfg.HTTPTimeout, nil)

	auth := authflow.NewCoordinator(adapters, authflow.NewStateRegistry(0), store, log, cfg.AllowStateMismatch)
	pipe := pipeline.NewService(adapters, rend, store, fanout, log)

	return &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		adapters: adapters,
		auth:     auth,
		pipe:     pipe,
	}, nil
}

// buildFanout loads the notifier registry file and instantiates all enabled
// sinks. A missing file is not fatal: result notification is optional.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notifiers.Fanout, error) {
	reg, err := notifiers.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		log.WarnObj("notifiers registry unavailable; result notification disabled", "notifiers_file", map[string]any{
			"path":  cfg.NotifiersFile,
			"error": err.Error(),
		})
		return notifiers.NewFanout(nil), nil
	}

	enabled := reg.Enabled()
	built, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, n := range enabled {
		summaries = append(summaries, map[string]string{"id": n.ID, "type": n.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notifiers.NewFanout(built), nil
}

// Close releases the storage backend.
func (a *App) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err)
	}
}
