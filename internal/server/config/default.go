package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "0.0.0.0:8000"
	DefaultReloadRateLimit = 1.0

	DefaultCertsPath         = "/etc/haproxy/certs"
	DefaultExpiryWarningDays = 30

	DefaultCheckInterval   = 60 * time.Minute
	DefaultErrorHistory    = 20
	DefaultOutcomeHistory  = 10
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRegion = "us-east-1"

	DefaultHTTPTimeout   = 30 * time.Second
	DefaultSocketTimeout = 10 * time.Second
	DefaultStatusTimeout = 5 * time.Second

	DefaultWatchDebounce = 500 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReloadRateLimit: DefaultReloadRateLimit,
			},
		},
		Certs: CertsSection{
			Path:              DefaultCertsPath,
			ExpiryWarningDays: DefaultExpiryWarningDays,
		},
		Sync: SyncSection{
			CheckInterval:   DefaultCheckInterval,
			OnStart:         true,
			ErrorHistory:    DefaultErrorHistory,
			OutcomeHistory:  DefaultOutcomeHistory,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Remote: RemoteSection{
			Backend: BackendSecretsManager,
			Region:  DefaultRegion,
		},
		Proxy: ProxySection{
			HTTPTimeout:   DefaultHTTPTimeout,
			SocketTimeout: DefaultSocketTimeout,
			StatusTimeout: DefaultStatusTimeout,
		},
		Watch: WatchSection{
			Enabled:  true,
			Debounce: DefaultWatchDebounce,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
