package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"lovlytt_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"lovlytt_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"lovlytt" description:"Database name"`

	// Marker storage
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the seen-marker store"`

	// Application configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing feed source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for pipeline tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`

	// Collaborator endpoints and shared secrets
	IngestURL     string `long:"ingest-url" env:"INGEST_URL" description:"Ingestion collaborator URL (defaults to this service's /api/ingest)"`
	IngestSecret  string `long:"ingest-secret" env:"INGEST_SECRET" required:"true" description:"Shared secret for the ingestion endpoint (required)"`
	MatcherURL    string `long:"matcher-url" env:"MATCHER_URL" description:"Matcher collaborator URL (defaults to this service's /api/link)"`
	MatcherSecret string `long:"matcher-secret" env:"MATCHER_SECRET" required:"true" description:"Shared secret for the matcher endpoint (required)"`
	WebhookSecret string `long:"webhook-secret" env:"WEBHOOK_SECRET" required:"true" description:"Shared secret expected on proposal webhooks (required)"`

	// Detail fetching
	ProxyURL         string `long:"proxy-url" env:"PROXY_URL" default:"https://r.jina.ai" description:"Text-extraction proxy base URL"`
	DetailUserAgent  string `long:"detail-user-agent" env:"DETAIL_USER_AGENT" default:"law-listener/1.0" description:"User agent for direct detail-page fetches"`
	MinContentLength int    `long:"min-content-length" env:"MIN_CONTENT_LENGTH" default:"100" description:"Minimum accepted length of extracted detail text"`

	// Poller behavior
	PacingInterval int `long:"pacing-interval" env:"PACING_INTERVAL" default:"2" description:"Delay in seconds between forwarding successive feed entries"`
	ColdStartLimit int `long:"cold-start-limit" env:"COLD_START_LIMIT" default:"20" description:"Maximum entries forwarded on the first poll of a source"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"lovlytt/1.0" description:"User agent string for feed and proxy requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Oslo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		RedisAddr:         raw.RedisAddr,
		SourcesDir:        raw.SourcesDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		IngestURL:         raw.IngestURL,
		IngestSecret:      raw.IngestSecret,
		MatcherURL:        raw.MatcherURL,
		MatcherSecret:     raw.MatcherSecret,
		WebhookSecret:     raw.WebhookSecret,
		ProxyURL:          raw.ProxyURL,
		DetailUserAgent:   raw.DetailUserAgent,
		MinContentLength:  raw.MinContentLength,
		PacingInterval:    raw.PacingInterval,
		ColdStartLimit:    raw.ColdStartLimit,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	// Forwarders default to this service's own collaborator endpoints.
	if cfg.IngestURL == "" {
		cfg.IngestURL = fmt.Sprintf("http://localhost:%s/api/ingest", cfg.Port)
	}
	if cfg.MatcherURL == "" {
		cfg.MatcherURL = fmt.Sprintf("http://localhost:%s/api/link", cfg.Port)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
