package config

import (
	"fmt"

	"github.com/yndnr/certrotate-go/internal/core/engine"
	"github.com/yndnr/certrotate-go/internal/infra/tlsroots"
	"github.com/yndnr/certrotate-go/internal/reload"
	"github.com/yndnr/certrotate-go/internal/remote"
	"github.com/yndnr/certrotate-go/internal/remote/acm"
	"github.com/yndnr/certrotate-go/internal/remote/secretsmanager"
)

// ToNotifierConfig builds the reload notifier config. Recorder and
// Logger are left for the caller.
func ToNotifierConfig(cfg *ServerConfig) (reload.Config, error) {
	if cfg == nil {
		return reload.Config{}, fmt.Errorf("config is nil")
	}

	tlsConfig, err := tlsroots.ClientConfig(cfg.Proxy.CAFile)
	if err != nil {
		return reload.Config{}, fmt.Errorf("proxy trust roots: %w", err)
	}

	return reload.Config{
		ReloadURL:     cfg.Proxy.ReloadURL,
		StatsSocket:   cfg.Proxy.StatsSocket,
		HTTPTimeout:   cfg.Proxy.HTTPTimeout,
		SocketTimeout: cfg.Proxy.SocketTimeout,
		StatusTimeout: cfg.Proxy.StatusTimeout,
		TLSConfig:     tlsConfig,
	}, nil
}

// ToSourceConfig builds the remote source config around backend.
func ToSourceConfig(cfg *ServerConfig, backend remote.Backend) remote.Config {
	return remote.Config{
		Backend:     backend,
		SecretNames: append([]string(nil), cfg.Remote.MonitoredNames()...),
		TagKey:      cfg.Remote.TagKey,
		TagValue:    cfg.Remote.TagValue,
		Passphrases: append([]string(nil), cfg.Remote.KeyPassphrases...),
	}
}

// ToBackendConfig builds the Secrets Manager backend config.
func ToBackendConfig(cfg *ServerConfig) secretsmanager.Config {
	return secretsmanager.Config{
		Region:   cfg.Remote.Region,
		Endpoint: cfg.Remote.Endpoint,
	}
}

// ToACMConfig builds the ACM backend config. The first configured key
// passphrase, if any, protects exports; otherwise one is generated per
// export.
func ToACMConfig(cfg *ServerConfig) acm.Config {
	c := acm.Config{
		Region:   cfg.Remote.Region,
		Endpoint: cfg.Remote.Endpoint,
	}
	if len(cfg.Remote.KeyPassphrases) > 0 {
		c.ExportPassphrase = cfg.Remote.KeyPassphrases[0]
	}
	return c
}

// ToEngineConfig builds the engine config. Collaborators are wired by
// the caller.
func ToEngineConfig(cfg *ServerConfig) engine.Config {
	return engine.Config{
		Interval:       cfg.Sync.CheckInterval,
		SyncOnStart:    cfg.Sync.OnStart,
		ErrorHistory:   cfg.Sync.ErrorHistory,
		OutcomeHistory: cfg.Sync.OutcomeHistory,
	}
}
