package command

import "time"

type errorView struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

type reloadView struct {
	At     time.Time `json:"at"`
	OK     bool      `json:"ok"`
	Reason string    `json:"reason"`
	Error  string    `json:"error"`
}

type statusView struct {
	IsRunning         bool        `json:"is_running"`
	SyncInProgress    bool        `json:"sync_in_progress"`
	LastSyncTime      *time.Time  `json:"last_sync_time"`
	NextSync          *time.Time  `json:"next_sync"`
	CheckInterval     string      `json:"check_interval"`
	CertificatesCount int         `json:"certificates_count"`
	Discovery         string      `json:"discovery"`
	MonitoredNames    []string    `json:"monitored_names"`
	RecentErrors      []errorView `json:"recent_errors"`
	LastReload        *reloadView `json:"last_reload"`
}

type outcomeView struct {
	ID                 string    `json:"id"`
	Trigger            string    `json:"trigger"`
	Discovery          string    `json:"discovery"`
	ChangedIdentifiers []string  `json:"changed_identifiers"`
	Errors             []string  `json:"errors"`
	StartedAt          time.Time `json:"started_at"`
	DurationSeconds    float64   `json:"duration_seconds"`
	Succeeded          bool      `json:"succeeded"`
	Reloaded           bool      `json:"reloaded"`
}

type historyView struct {
	Outcomes []outcomeView `json:"outcomes"`
}

type certificateView struct {
	Identifier      string    `json:"identifier"`
	DomainNames     []string  `json:"domain_names"`
	SerialNumber    string    `json:"serial_number"`
	ExpiresAt       time.Time `json:"expires_at"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	IsExpired       bool      `json:"is_expired"`
	CertificatePath string    `json:"certificate_path"`
}

type certificatesView struct {
	Certificates []certificateView `json:"certificates"`
	Count        int               `json:"count"`
	Days         *int              `json:"days"`
}

type secretView struct {
	Name        string            `json:"name"`
	ID          string            `json:"id"`
	Description string            `json:"description"`
	LastChanged time.Time         `json:"last_changed"`
	Tags        map[string]string `json:"tags"`
}

type listSecretsView struct {
	AllSecrets       []secretView   `json:"all_secrets"`
	MonitoredSecrets []secretView   `json:"monitored_secrets"`
	DiscoveryMethod  string         `json:"discovery_method"`
	DiscoveryConfig  map[string]any `json:"discovery_config"`
	TotalSecrets     int            `json:"total_secrets"`
	MonitoredCount   int            `json:"monitored_count"`
}

type secretsByTagView struct {
	TagFilter struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"tag_filter"`
	Secrets []secretView `json:"secrets"`
	Count   int          `json:"count"`
}

type proxyView struct {
	Transports   []string          `json:"transports"`
	Info         map[string]string `json:"info"`
	Certificates *struct {
		Certificates []struct {
			Filename string `json:"filename"`
			Status   string `json:"status"`
		} `json:"certificates"`
	} `json:"certificates"`
}

type healthView struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Time    string `json:"time"`
}
