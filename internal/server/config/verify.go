package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/yndnr/certrotate-go/internal/telemetry/logger"
)

// Verify validates the configuration. It creates certs.path when missing.
func Verify(cfg *ServerConfig) error {
	if err := verifyCerts(&cfg.Certs); err != nil {
		return err
	}
	if err := verifySync(&cfg.Sync); err != nil {
		return err
	}
	if err := verifyRemote(&cfg.Remote); err != nil {
		return err
	}
	if err := verifyProxy(&cfg.Proxy); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if cfg.Server.HTTP.ReloadRateLimit < 0 {
		return errors.New("server.http.reload_rate_limit must not be negative")
	}
	return nil
}

// Warnings returns problems that do not prevent the service from running.
func Warnings(cfg *ServerConfig) []string {
	var warnings []string
	if len(cfg.Remote.MonitoredNames()) == 0 && cfg.Remote.TagKey == "" {
		warnings = append(warnings, "no monitored names or remote.tag_key configured: nothing will be synced")
	}
	switch {
	case cfg.Remote.Backend == BackendACM && len(cfg.Remote.SecretNames) > 0:
		warnings = append(warnings, "remote.secret_names is ignored by the acm backend")
	case cfg.Remote.Backend != BackendACM && len(cfg.Remote.ACMCertARNs) > 0:
		warnings = append(warnings, "remote.acm_cert_arns is ignored by the secretsmanager backend")
	}
	if cfg.Proxy.ReloadURL == "" && cfg.Proxy.StatsSocket == "" {
		warnings = append(warnings, "no proxy.reload_url or proxy.stats_socket configured: installs will not trigger a reload")
	}
	return warnings
}

func verifyCerts(cfg *CertsSection) error {
	if strings.TrimSpace(cfg.Path) == "" {
		return errors.New("certs.path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0750); err != nil {
		return fmt.Errorf("cannot create certificate directory: %w", err)
	}

	probe, err := os.CreateTemp(cfg.Path, ".write-probe-*")
	if err != nil {
		return fmt.Errorf("certificate directory %s is not writable: %w", cfg.Path, err)
	}
	probe.Close()
	_ = os.Remove(probe.Name())

	if cfg.ExpiryWarningDays < 0 {
		return errors.New("certs.expiry_warning_days must not be negative")
	}
	return nil
}

func verifySync(cfg *SyncSection) error {
	if cfg.CheckInterval <= 0 {
		return errors.New("sync.check_interval must be positive")
	}
	if cfg.ErrorHistory < 1 {
		return errors.New("sync.error_history must be at least 1")
	}
	if cfg.OutcomeHistory < 1 {
		return errors.New("sync.outcome_history must be at least 1")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("sync.shutdown_timeout must be positive")
	}
	return nil
}

func verifyRemote(cfg *RemoteSection) error {
	switch cfg.Backend {
	case BackendSecretsManager, BackendACM:
	default:
		return fmt.Errorf("remote.backend must be %q or %q, got %q", BackendSecretsManager, BackendACM, cfg.Backend)
	}
	for _, arn := range cfg.ACMCertARNs {
		if strings.TrimSpace(arn) == "" {
			return errors.New("remote.acm_cert_arns must not contain empty entries")
		}
	}
	if (cfg.TagKey == "") != (cfg.TagValue == "") {
		return errors.New("remote.tag_key and remote.tag_value must be set together")
	}
	for _, name := range cfg.SecretNames {
		if strings.TrimSpace(name) == "" {
			return errors.New("remote.secret_names must not contain empty names")
		}
	}
	return nil
}

func verifyProxy(cfg *ProxySection) error {
	if cfg.ReloadURL != "" {
		u, err := url.Parse(cfg.ReloadURL)
		if err != nil {
			return fmt.Errorf("proxy.reload_url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("proxy.reload_url must be an absolute http(s) URL, got %q", cfg.ReloadURL)
		}
	}
	if cfg.CAFile != "" {
		if _, err := os.Stat(cfg.CAFile); err != nil {
			return fmt.Errorf("proxy.ca_file: %w", err)
		}
	}
	if cfg.HTTPTimeout < 0 || cfg.SocketTimeout < 0 || cfg.StatusTimeout < 0 {
		return errors.New("proxy timeouts must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Format)
	}
}
