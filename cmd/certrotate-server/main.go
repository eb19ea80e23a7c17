package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/yndnr/certrotate-go/internal/core/engine"
	"github.com/yndnr/certrotate-go/internal/infra/buildinfo"
	"github.com/yndnr/certrotate-go/internal/infra/certwatch"
	"github.com/yndnr/certrotate-go/internal/infra/confloader"
	"github.com/yndnr/certrotate-go/internal/infra/shutdown"
	"github.com/yndnr/certrotate-go/internal/reload"
	"github.com/yndnr/certrotate-go/internal/remote"
	"github.com/yndnr/certrotate-go/internal/remote/acm"
	"github.com/yndnr/certrotate-go/internal/remote/secretsmanager"
	"github.com/yndnr/certrotate-go/internal/server/config"
	"github.com/yndnr/certrotate-go/internal/server/httpserver"
	"github.com/yndnr/certrotate-go/internal/server/httpserver/handler"
	"github.com/yndnr/certrotate-go/internal/storage/certstore"
	"github.com/yndnr/certrotate-go/internal/telemetry/logger"
	"github.com/yndnr/certrotate-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		checkOnly   = flag.Bool("check-config", false, "Validate configuration and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("certrotate-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *checkOnly {
		fmt.Println("configuration OK")
		return nil
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	log.Info("starting certrotate-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile,
		"backend", cfg.Remote.Backend)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))
	for _, w := range config.Warnings(cfg) {
		log.Warn(w)
	}

	registry := metric.NewRegistry()

	c, err := wire(cfg, log, registry)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(cfg.Sync.ShutdownTimeout, log)

	// Hooks run in reverse registration order.
	shutdownHandler.OnShutdown("engine", func(ctx context.Context) error {
		log.Info("stopping sync engine")
		return c.engine.Stop(ctx)
	})

	if cfg.Watch.Enabled {
		bridge := certwatch.New(cfg.Certs.Path, c.store, c.engine,
			certwatch.WithLogger(log),
			certwatch.WithDebounce(cfg.Watch.Debounce),
			certwatch.WithRecorder(registry),
		)
		if err := bridge.Start(); err != nil {
			log.Warn("certificate directory watch disabled", "path", cfg.Certs.Path, "error", err)
		} else {
			shutdownHandler.OnShutdown("certwatch", func(context.Context) error {
				bridge.Stop()
				return nil
			})
		}
	}

	if *configFile != "" {
		if stop, err := watchConfig(*configFile, log); err != nil {
			log.Warn("config file watch disabled", "path", *configFile, "error", err)
		} else {
			shutdownHandler.OnShutdown("confwatch", func(context.Context) error {
				return stop()
			})
		}
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = registry.Handler()
	}
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: handler.Config{
			Engine:            c.engine,
			Certificates:      c.store,
			Secrets:           c.source,
			Proxy:             c.notifier,
			Metrics:           metricsHandler,
			ReloadRateLimit:   cfg.Server.HTTP.ReloadRateLimit,
			ExpiryWarningDays: cfg.Certs.ExpiryWarningDays,
		},
		Logger:          log,
		EnableAccessLog: true,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, log)

	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		if err := <-serveErr; err != nil {
			log.Error("HTTP server error", "error", err)
			cancel(fmt.Errorf("http server: %w", err))
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(waitCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	if cause := context.Cause(waitCtx); cause != nil {
		return cause
	}

	log.Info("server stopped gracefully")
	return nil
}

// components holds the wired core of the server.
type components struct {
	store    *certstore.Store
	source   *remote.Source
	notifier *reload.Notifier
	engine   *engine.Engine
}

// wire builds the store, the remote source, the notifier and the engine.
func wire(cfg *config.ServerConfig, log *slog.Logger, registry *metric.Registry) (*components, error) {
	store, err := certstore.New(certstore.Config{Dir: cfg.Certs.Path, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("init certificate store: %w", err)
	}
	if _, err := store.Scan(); err != nil {
		return nil, fmt.Errorf("scan certificate store: %w", err)
	}

	backend, err := newBackend(cfg, log)
	if err != nil {
		return nil, err
	}

	sourceCfg := config.ToSourceConfig(cfg, backend)
	sourceCfg.Recorder = registry
	sourceCfg.Logger = log
	source, err := remote.NewSource(sourceCfg)
	if err != nil {
		return nil, fmt.Errorf("init remote source: %w", err)
	}

	notifierCfg, err := config.ToNotifierConfig(cfg)
	if err != nil {
		return nil, err
	}
	notifierCfg.Recorder = registry
	notifierCfg.Logger = log
	notifier := reload.New(notifierCfg)

	engineCfg := config.ToEngineConfig(cfg)
	engineCfg.Store = store
	engineCfg.Source = source
	engineCfg.Notifier = notifier
	engineCfg.Recorder = registry
	engineCfg.Logger = log
	eng, err := engine.New(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	return &components{store: store, source: source, notifier: notifier, engine: eng}, nil
}

// newBackend builds the remote backend selected by remote.backend.
func newBackend(cfg *config.ServerConfig, log *slog.Logger) (remote.Backend, error) {
	switch cfg.Remote.Backend {
	case config.BackendACM:
		acmCfg := config.ToACMConfig(cfg)
		acmCfg.Logger = log
		backend, err := acm.New(acmCfg)
		if err != nil {
			return nil, fmt.Errorf("init acm: %w", err)
		}
		return backend, nil
	default:
		smCfg := config.ToBackendConfig(cfg)
		smCfg.Logger = log
		backend, err := secretsmanager.New(smCfg)
		if err != nil {
			return nil, fmt.Errorf("init secrets manager: %w", err)
		}
		return backend, nil
	}
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithListKeys(config.ListKeys...)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// watchConfig applies log level changes from the config file without a
// restart. Other settings take effect on the next start.
func watchConfig(path string, log *slog.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("ignoring invalid configuration change", "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("ignoring log level change", "level", cfg.Log.Level, "error", err)
			return
		}
		log.Info("log level changed", "level", cfg.Log.Level)
	})
	w.StartAsync()

	return w.Stop, nil
}
