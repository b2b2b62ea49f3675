package types

import "time"

// HTTPConfig holds shared HTTP settings used by source adapters and LLM clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RankerConfig holds settings for LLM relevance scoring.
type RankerConfig struct {
	// BatchSize bounds concurrent scoring calls (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// BatchDelay is the pause between batches (default 1s).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`

	// CallTimeout bounds one scoring call (default 30s).
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`
}

// SMTPConfig holds SMTP transport settings.
type SMTPConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"-" yaml:"-"`

	// UseTLS upgrades the connection with STARTTLS.
	UseTLS bool `json:"use_tls" yaml:"use_tls"`
}

// StateConfig selects the sent-marker backend.
type StateConfig struct {
	// Backend is "file" or "sqlite". Ignored when RemoteURI is set.
	Backend string `json:"backend" yaml:"backend"`

	// Dir holds sent.json or state.db.
	Dir string `json:"dir" yaml:"dir"`

	// RemoteURI selects the remote object-store backend (e.g. "s3://bucket/key").
	RemoteURI string `json:"remote_uri,omitempty" yaml:"remote_uri,omitempty"`
}

// EmailDigestConfig is the full configuration of the send pipeline.
type EmailDigestConfig struct {
	Recipients []string `json:"recipients" yaml:"recipients"`

	// SubjectTemplate may contain "{date}".
	SubjectTemplate string `json:"subject_template" yaml:"subject_template"`
	From            string `json:"from" yaml:"from"`

	// Timezone is the IANA zone the window is computed in.
	Timezone string `json:"timezone" yaml:"timezone"`

	// Window is the look-back duration (e.g. 24h or 7d).
	Window time.Duration `json:"window" yaml:"window"`

	Digest DigestConfig `json:"digest" yaml:"digest"`
	SMTP   SMTPConfig   `json:"smtp" yaml:"smtp"`
	State  StateConfig  `json:"state" yaml:"state"`

	// SaveDir additionally saves each generated digest as JSON when set.
	SaveDir string `json:"save_dir,omitempty" yaml:"save_dir,omitempty"`
}

// PathsConfig locates on-disk pipeline state.
type PathsConfig struct {
	// MemoryPath is the seen-paper memory file.
	MemoryPath string `json:"memory_path" yaml:"memory_path"`

	// StorageDir holds one <date>.json per digest.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`
}

// NotifyConfig configures completed-digest notifications.
type NotifyConfig struct {
	// NATSURL enables publishing when non-empty.
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Subject string `json:"subject" yaml:"subject"`
}

// SchedulerConfig configures the daily generation trigger.
type SchedulerConfig struct {
	// Spec is a standard five-field cron expression (default "0 6 * * *").
	Spec string `json:"spec" yaml:"spec"`

	// Timezone is the IANA zone the spec is evaluated in (default UTC).
	Timezone string `json:"timezone" yaml:"timezone"`
}
