package config

import "time"

// ServerConfig is the root configuration for certrotate-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Certs   CertsSection   `koanf:"certs"`
	Sync    SyncSection    `koanf:"sync"`
	Remote  RemoteSection  `koanf:"remote"`
	Proxy   ProxySection   `koanf:"proxy"`
	Watch   WatchSection   `koanf:"watch"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
	// ReloadRateLimit bounds manual sync requests per second; 0 disables it.
	ReloadRateLimit float64 `koanf:"reload_rate_limit"`
}

// CertsSection configures the local certificate directory.
type CertsSection struct {
	Path              string `koanf:"path"`
	ExpiryWarningDays int    `koanf:"expiry_warning_days"`
}

// SyncSection configures the reconciliation engine.
type SyncSection struct {
	CheckInterval   time.Duration `koanf:"check_interval"`
	OnStart         bool          `koanf:"on_start"`
	ErrorHistory    int           `koanf:"error_history"`
	OutcomeHistory  int           `koanf:"outcome_history"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RemoteSection configures the remote secret store and discovery.
type RemoteSection struct {
	// Backend selects the store: "secretsmanager" or "acm".
	Backend     string   `koanf:"backend"`
	Region      string   `koanf:"region"`
	Endpoint    string   `koanf:"endpoint"`
	SecretNames []string `koanf:"secret_names"`

	// ACMCertARNs is the explicit list for the acm backend.
	ACMCertARNs []string `koanf:"acm_cert_arns"`

	TagKey         string   `koanf:"tag_key"`
	TagValue       string   `koanf:"tag_value"`
	KeyPassphrases []string `koanf:"key_passphrases"`
}

// Remote backend names.
const (
	BackendSecretsManager = "secretsmanager"
	BackendACM            = "acm"
)

// MonitoredNames returns the explicit list for the selected backend.
func (r *RemoteSection) MonitoredNames() []string {
	if r.Backend == BackendACM {
		return r.ACMCertARNs
	}
	return r.SecretNames
}

// ProxySection configures how the proxy is told to reload.
type ProxySection struct {
	ReloadURL     string        `koanf:"reload_url"`
	CAFile        string        `koanf:"ca_file"`
	StatsSocket   string        `koanf:"stats_socket"`
	HTTPTimeout   time.Duration `koanf:"http_timeout"`
	SocketTimeout time.Duration `koanf:"socket_timeout"`
	StatusTimeout time.Duration `koanf:"status_timeout"`
}

// WatchSection configures the certificate directory watcher.
type WatchSection struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

// MetricsSection configures the /metrics endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ListKeys are the keys whose environment values are comma-separated.
var ListKeys = []string{
	"remote.secret_names",
	"remote.acm_cert_arns",
	"remote.key_passphrases",
}
