package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrymomot/cmsguard/pkg/config"
	"github.com/dmitrymomot/cmsguard/pkg/email"
	"github.com/dmitrymomot/cmsguard/pkg/httpserver"
	"github.com/dmitrymomot/cmsguard/pkg/ratelimiter"
	"github.com/dmitrymomot/cmsguard/pkg/secheaders"
)

const (
	driverMemory     = "memory"
	driverPostgres   = "postgres"
	driverRedis      = "redis"
	driverSlog       = "slog"
	driverMongo      = "mongo"
	driverOpenSearch = "opensearch"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"cmsguard"`
	LogLevel string `env:"LOG_LEVEL"`

	// StoreDriver selects where comments and articles live: memory or postgres.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`

	// AuditSinks lists audit storages: memory, slog, postgres, mongo, redis, opensearch.
	// The first one that can answer queries serves GET /audit.
	AuditSinks             []string      `env:"AUDIT_SINKS" envSeparator:"," envDefault:"memory,slog"`
	AuditBufferSize        int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
	AuditIPHashKey         string        `env:"AUDIT_IP_HASH_KEY"`
	AuditRetention         time.Duration `env:"AUDIT_RETENTION" envDefault:"2160h"`
	AuditRetentionSchedule string        `env:"AUDIT_RETENTION_SCHEDULE" envDefault:"@daily"`
	AuditRedisStream       string        `env:"AUDIT_REDIS_STREAM" envDefault:"audit:events"`
	AuditRedisMaxLen       int64         `env:"AUDIT_REDIS_MAXLEN" envDefault:"100000"`
	AuditMongoCollection   string        `env:"AUDIT_MONGO_COLLECTION" envDefault:"audit_events"`

	RateLimitStore  string   `env:"RATELIMIT_STORE" envDefault:"memory"`
	ThreatRulesFile string   `env:"THREAT_RULES_FILE"`
	TrustedProxies  []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// APITokens entries have the form token:actor-id:Role.
	APITokens         []string `env:"API_TOKENS" envSeparator:","`
	TrustActorHeaders bool     `env:"IDENTITY_TRUST_HEADERS" envDefault:"false"`
	ActorIDHeader     string   `env:"IDENTITY_ID_HEADER" envDefault:"X-Actor-ID"`
	ActorRoleHeader   string   `env:"IDENTITY_ROLE_HEADER" envDefault:"X-Actor-Role"`

	NotifySendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"10s"`
}

type settings struct {
	app        appConfig
	http       httpserver.Config
	rateLimit  ratelimiter.Config
	secHeaders secheaders.Config
	email      email.Config
}

func loadSettings() (settings, error) {
	var s settings
	for _, load := range []func() error{
		func() error { return config.Load(&s.app) },
		func() error { return config.Load(&s.http) },
		func() error { return config.Load(&s.rateLimit) },
		func() error { return config.Load(&s.secHeaders) },
		func() error { return config.Load(&s.email) },
	} {
		if err := load(); err != nil {
			return settings{}, err
		}
	}
	return s, s.app.validate()
}

func (c appConfig) validate() error {
	switch c.StoreDriver {
	case driverMemory, driverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.RateLimitStore {
	case driverMemory, driverRedis:
	default:
		return fmt.Errorf("unknown RATELIMIT_STORE %q", c.RateLimitStore)
	}
	known := []string{driverMemory, driverSlog, driverPostgres, driverMongo, driverRedis, driverOpenSearch}
	for _, s := range c.AuditSinks {
		if !slices.Contains(known, s) {
			return fmt.Errorf("unknown audit sink %q", s)
		}
	}
	return nil
}

func (c appConfig) usesPostgres() bool {
	return c.StoreDriver == driverPostgres || c.hasAuditSink(driverPostgres)
}

func (c appConfig) usesRedis() bool {
	return c.RateLimitStore == driverRedis || c.hasAuditSink(driverRedis)
}

func (c appConfig) hasAuditSink(name string) bool {
	return slices.Contains(c.AuditSinks, name)
}
