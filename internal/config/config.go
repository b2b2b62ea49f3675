// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles pipeline settings from viper. Every value can
// come from the YAML config file, an environment variable, a CLI flag, or
// a .secrets/ file. Problems are collected and reported together.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/llm"
	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/internal/send"
	"github.com/pdiddy/research-digest/internal/sources"
	"github.com/pdiddy/research-digest/internal/state"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Viper keys. Nested keys map to YAML sections.
const (
	KeyRecipients      = "recipients"
	KeyCategories      = "categories"
	KeyInterests       = "interests"
	KeySubject         = "subject"
	KeyFrom            = "from"
	KeyTimezone        = "timezone"
	KeyWindow          = "window"
	KeyMaxPapers       = "max_papers"
	KeyTopN            = "top_n"
	KeyDaysBack        = "days_back"
	KeySources         = "sources"
	KeyPriorityAuthors = "priority_authors"
	KeyAuthorBoost     = "author_boost"
	KeyExcludeSeen     = "exclude_seen"
	KeyMemoryPath      = "memory_path"
	KeyStorageDir      = "storage_dir"
	KeySaveDir         = "save_dir"
	KeyStateBackend    = "state.backend"
	KeyStateDir        = "state.dir"
	KeyStateRemoteURI  = "state.remote_uri"
	KeySchedule        = "schedule"
	KeyNATSURL         = "nats.url"
	KeyNATSSubject     = "nats.subject"
	KeyLLMProvider     = "llm.provider"
	KeyLLMModel        = "llm.model"
	KeyAnthropicKey    = "llm.anthropic_api_key"
	KeyOpenAIKey       = "llm.openai_api_key"
	KeyGoogleKey       = "llm.google_api_key"
	KeySemanticKey     = "semantic_scholar_api_key"
	KeySMTPHost        = "smtp.host"
	KeySMTPPort        = "smtp.port"
	KeySMTPUser        = "smtp.user"
	KeySMTPPass        = "smtp.pass"
	KeySMTPTLS         = "smtp.tls"
	KeyBatchSize       = "ranker.batch_size"
	KeyBatchDelay      = "ranker.batch_delay"
	KeyCallTimeout     = "ranker.call_timeout"
	KeyHTTPTimeout     = "http.timeout"
	KeyUserAgent       = "http.user_agent"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// Bindings maps each viper key to its environment variable.
var Bindings = []struct{ Key, Env string }{
	{KeyRecipients, "DIGEST_RECIPIENTS"},
	{KeyCategories, "DIGEST_CATEGORIES"},
	{KeyInterests, "DIGEST_INTERESTS"},
	{KeySubject, "DIGEST_SUBJECT"},
	{KeyFrom, "DIGEST_FROM"},
	{KeyTimezone, "DIGEST_TZ"},
	{KeyWindow, "DIGEST_WINDOW"},
	{KeyMaxPapers, "DIGEST_MAX_PAPERS"},
	{KeyTopN, "DIGEST_TOP_N"},
	{KeyDaysBack, "DIGEST_DAYS_BACK"},
	{KeySources, "DIGEST_SOURCES"},
	{KeyPriorityAuthors, "DIGEST_PRIORITY_AUTHORS"},
	{KeyAuthorBoost, "DIGEST_AUTHOR_BOOST"},
	{KeyExcludeSeen, "DIGEST_EXCLUDE_SEEN"},
	{KeyMemoryPath, "DIGEST_MEMORY_PATH"},
	{KeyStorageDir, "DIGEST_STORAGE_DIR"},
	{KeySaveDir, "DIGEST_SAVE_DIR"},
	{KeyStateBackend, "DIGEST_STATE_BACKEND"},
	{KeyStateDir, "DIGEST_STATE_DIR"},
	{KeyStateRemoteURI, "DIGEST_STATE_S3_URI"},
	{KeySchedule, "DIGEST_SCHEDULE"},
	{KeyNATSURL, "DIGEST_NATS_URL"},
	{KeyNATSSubject, "DIGEST_NATS_SUBJECT"},
	{KeyLLMProvider, "LLM_PROVIDER"},
	{KeyLLMModel, "LLM_MODEL"},
	{KeyAnthropicKey, "ANTHROPIC_API_KEY"},
	{KeyOpenAIKey, "OPENAI_API_KEY"},
	{KeyGoogleKey, "GOOGLE_API_KEY"},
	{KeySemanticKey, "SEMANTIC_SCHOLAR_API_KEY"},
	{KeySMTPHost, "SMTP_HOST"},
	{KeySMTPPort, "SMTP_PORT"},
	{KeySMTPUser, "SMTP_USER"},
	{KeySMTPPass, "SMTP_PASS"},
	{KeySMTPTLS, "SMTP_TLS"},
	{KeyBatchSize, "DIGEST_RANK_BATCH_SIZE"},
	{KeyBatchDelay, "DIGEST_RANK_BATCH_DELAY"},
	{KeyCallTimeout, "DIGEST_RANK_CALL_TIMEOUT"},
	{KeyHTTPTimeout, "DIGEST_HTTP_TIMEOUT"},
	{KeyUserAgent, "DIGEST_USER_AGENT"},
	{KeyLogLevel, "DIGEST_LOG_LEVEL"},
	{KeyLogFormat, "DIGEST_LOG_FORMAT"},
}

// apiKeys maps provider names to the viper key holding their API key.
var apiKeys = map[string]string{
	llm.ProviderAnthropic: KeyAnthropicKey,
	llm.ProviderOpenAI:    KeyOpenAIKey,
	llm.ProviderGoogle:    KeyGoogleKey,
}

// Config is the assembled configuration.
type Config struct {
	Digest    types.DigestConfig
	Email     types.EmailDigestConfig
	Paths     types.PathsConfig
	Ranker    types.RankerConfig
	HTTP      types.HTTPConfig
	Notify    types.NotifyConfig
	Scheduler types.SchedulerConfig
	LogLevel  string
	LogFormat string
}

// Error aggregates every configuration problem found in one pass.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "Configuration errors:\n- " + strings.Join(e.Problems, "\n- ")
}

// Bind registers environment bindings and defaults on v.
func Bind(v *viper.Viper) {
	for _, b := range Bindings {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(b.Key, b.Env)
	}
	v.SetDefault(KeySubject, send.DefaultSubject)
	v.SetDefault(KeyFrom, send.DefaultFrom)
	v.SetDefault(KeyTimezone, "UTC")
	v.SetDefault(KeyWindow, "24h")
	v.SetDefault(KeyMaxPapers, types.DefaultMaxPapers)
	v.SetDefault(KeyTopN, types.DefaultTopN)
	v.SetDefault(KeySources, types.SourceArxiv)
	v.SetDefault(KeyAuthorBoost, types.DefaultAuthorBoost)
	v.SetDefault(KeyExcludeSeen, true)
	v.SetDefault(KeyMemoryPath, "data/memory.json")
	v.SetDefault(KeyStorageDir, "data/digests")
	v.SetDefault(KeyStateBackend, state.KindFile)
	v.SetDefault(KeyStateDir, state.DefaultDir)
	v.SetDefault(KeySchedule, "0 6 * * *")
	v.SetDefault(KeyNATSSubject, "research.digest.completed")
	v.SetDefault(KeyLLMProvider, types.DefaultLLMProvider)
	v.SetDefault(KeySMTPPort, 587)
	v.SetDefault(KeySMTPTLS, true)
	v.SetDefault(KeyBatchSize, 5)
	v.SetDefault(KeyBatchDelay, time.Second)
	v.SetDefault(KeyCallTimeout, 30*time.Second)
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyUserAgent, "research-digest/0.1")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// ApplySecrets installs secret file values as defaults for the keys whose
// environment variable matches the file name (ANTHROPIC_API_KEY is read
// from anthropic-api-key). Environment and config file values still win.
// It returns the keys it set.
func ApplySecrets(v *viper.Viper, loaded map[string]string) []string {
	var applied []string
	for _, b := range Bindings {
		if val, ok := loaded[secrets.FileName(b.Env)]; ok {
			v.SetDefault(b.Key, val)
			applied = append(applied, b.Key)
		}
	}
	return applied
}

type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &Error{Problems: p}
}

// LoadDigest reads the settings needed to generate digests. Categories,
// interests, and the active provider's API key are required.
func LoadDigest(v *viper.Viper) (*Config, error) {
	var p problems
	cfg := load(v, &p)
	return cfg, p.err()
}

// LoadEmail reads the digest settings plus the send pipeline settings.
// Recipients and an SMTP host are additionally required.
func LoadEmail(v *viper.Viper) (*Config, error) {
	var p problems
	cfg := load(v, &p)

	e := &cfg.Email
	e.Digest = cfg.Digest
	e.Recipients = ParseList(v.Get(KeyRecipients))
	if len(e.Recipients) == 0 {
		p.add("DIGEST_RECIPIENTS is required (comma-separated emails)")
	}
	e.SubjectTemplate = v.GetString(KeySubject)
	e.From = v.GetString(KeyFrom)
	e.Timezone = v.GetString(KeyTimezone)
	if _, err := time.LoadLocation(e.Timezone); err != nil {
		p.add("DIGEST_TZ: unknown timezone %q", e.Timezone)
	}
	w, err := send.ParseWindow(v.GetString(KeyWindow))
	if err != nil {
		p.add("%s", err)
	}
	e.Window = w
	e.SaveDir = v.GetString(KeySaveDir)
	e.State = LoadState(v)
	switch strings.ToLower(e.State.Backend) {
	case state.KindFile, state.KindSQLite:
	default:
		p.add("DIGEST_STATE_BACKEND must be %q or %q", state.KindFile, state.KindSQLite)
	}

	e.SMTP = types.SMTPConfig{
		Host:     strings.TrimSpace(v.GetString(KeySMTPHost)),
		Port:     intValue(v, KeySMTPPort, "SMTP_PORT", &p),
		User:     v.GetString(KeySMTPUser),
		Password: v.GetString(KeySMTPPass),
		UseTLS:   boolValue(v.Get(KeySMTPTLS)),
	}
	if e.SMTP.Host == "" {
		p.add("SMTP_HOST is required for sending email")
	}
	return cfg, p.err()
}

func load(v *viper.Viper, p *problems) *Config {
	cfg := &Config{
		Paths: LoadPaths(v),
		Notify: types.NotifyConfig{
			NATSURL: v.GetString(KeyNATSURL),
			Subject: v.GetString(KeyNATSSubject),
		},
		Scheduler: types.SchedulerConfig{
			Spec:     v.GetString(KeySchedule),
			Timezone: v.GetString(KeyTimezone),
		},
		HTTP: types.HTTPConfig{
			Timeout:   durationValue(v, KeyHTTPTimeout, "DIGEST_HTTP_TIMEOUT", p),
			UserAgent: v.GetString(KeyUserAgent),
		},
		Ranker: types.RankerConfig{
			BatchSize:   intValue(v, KeyBatchSize, "DIGEST_RANK_BATCH_SIZE", p),
			BatchDelay:  durationValue(v, KeyBatchDelay, "DIGEST_RANK_BATCH_DELAY", p),
			CallTimeout: durationValue(v, KeyCallTimeout, "DIGEST_RANK_CALL_TIMEOUT", p),
		},
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
	}

	d := &cfg.Digest
	d.Categories = ParseList(v.Get(KeyCategories))
	if len(d.Categories) == 0 {
		p.add("DIGEST_CATEGORIES is required (comma-separated arXiv categories)")
	}
	d.Interests = strings.TrimSpace(v.GetString(KeyInterests))
	if d.Interests == "" {
		p.add("DIGEST_INTERESTS is required (research interests description)")
	}
	d.MaxPapers = intValue(v, KeyMaxPapers, "DIGEST_MAX_PAPERS", p)
	d.TopN = intValue(v, KeyTopN, "DIGEST_TOP_N", p)
	if days := intValue(v, KeyDaysBack, "DIGEST_DAYS_BACK", p); days > 0 {
		d.DateFilter = &types.DateFilter{DaysBack: days}
	}
	d.Sources = ParseList(v.Get(KeySources))
	for _, s := range d.Sources {
		if !sources.Known(s) {
			p.add("DIGEST_SOURCES: unknown source %q", s)
		}
	}
	d.PriorityAuthors = ParseList(v.Get(KeyPriorityAuthors))
	boost, err := cast.ToFloat64E(v.Get(KeyAuthorBoost))
	if err != nil {
		p.add("DIGEST_AUTHOR_BOOST must be a number")
	}
	d.AuthorBoost = boost
	d.ExcludeSeen = boolValue(v.Get(KeyExcludeSeen))
	d.SemanticScholarAPIKey = v.GetString(KeySemanticKey)

	provider := strings.ToLower(strings.TrimSpace(v.GetString(KeyLLMProvider)))
	d.LLM = types.LLMConfig{
		Provider: provider,
		APIKey:   v.GetString(apiKeys[provider]),
		Model:    v.GetString(KeyLLMModel),
	}
	if err := llm.Validate(d.LLM); err != nil {
		if env, ok := llm.KeyEnv(provider); ok && errors.Is(err, llm.ErrMissingAPIKey) {
			p.add("%s is required when LLM_PROVIDER=%s", env, provider)
		} else {
			p.add("LLM_PROVIDER: %s", err)
		}
	}

	d.Normalize()
	return cfg
}

// ParseList splits a comma-separated string, or flattens a YAML list,
// trimming whitespace and dropping empty items.
func ParseList(value any) []string {
	var items []string
	switch t := value.(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(t, ",")
	default:
		items = cast.ToStringSlice(value)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseBool accepts true, 1, yes, and on in any case. Everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func boolValue(value any) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return ParseBool(cast.ToString(value))
}

func intValue(v *viper.Viper, key, env string, p *problems) int {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			return 0
		}
		raw = s
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		p.add("%s must be an integer", env)
	}
	return n
}

func durationValue(v *viper.Viper, key, env string, p *problems) time.Duration {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		p.add("%s must be a duration (e.g. 30s)", env)
	}
	return d
}

// LoadPaths reads only the on-disk locations. It never fails.
func LoadPaths(v *viper.Viper) types.PathsConfig {
	return types.PathsConfig{
		MemoryPath: v.GetString(KeyMemoryPath),
		StorageDir: v.GetString(KeyStorageDir),
	}
}

// LoadState reads only the sent-marker backend selection.
func LoadState(v *viper.Viper) types.StateConfig {
	return types.StateConfig{
		Backend:   v.GetString(KeyStateBackend),
		Dir:       v.GetString(KeyStateDir),
		RemoteURI: v.GetString(KeyStateRemoteURI),
	}
}
