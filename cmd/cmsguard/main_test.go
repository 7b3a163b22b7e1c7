package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/config"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/svc/identity"
)

func TestAppConfigValidate(t *testing.T) {
	t.Parallel()

	valid := appConfig{StoreDriver: driverMemory, RateLimitStore: driverMemory, AuditSinks: []string{driverMemory, driverSlog}}
	require.NoError(t, valid.validate())
	assert.False(t, valid.usesPostgres())
	assert.False(t, valid.usesRedis())

	tests := []struct {
		name string
		edit func(*appConfig)
	}{
		{"store driver", func(c *appConfig) { c.StoreDriver = "sqlite" }},
		{"rate limit store", func(c *appConfig) { c.RateLimitStore = "postgres" }},
		{"audit sink", func(c *appConfig) { c.AuditSinks = []string{"kafka"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.edit(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestAppConfigBackends(t *testing.T) {
	t.Parallel()

	cfg := appConfig{StoreDriver: driverMemory, RateLimitStore: driverRedis, AuditSinks: []string{driverPostgres, driverMongo}}
	assert.True(t, cfg.usesPostgres())
	assert.True(t, cfg.usesRedis())
	assert.True(t, cfg.hasAuditSink(driverMongo))
	assert.False(t, cfg.hasAuditSink(driverOpenSearch))
}

func TestAppConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg appConfig
	require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{})))
	assert.Equal(t, driverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{driverMemory, driverSlog}, cfg.AuditSinks)
	assert.Equal(t, "X-Actor-ID", cfg.ActorIDHeader)
	require.NoError(t, cfg.validate())
}

func TestBuildAuditInMemory(t *testing.T) {
	t.Parallel()

	app := appConfig{
		AuditSinks:             []string{driverSlog, driverMemory},
		AuditBufferSize:        16,
		AuditRetention:         24 * time.Hour,
		AuditRetentionSchedule: "@daily",
		AuditIPHashKey:         "0123456789abcdef0123",
	}
	p, err := buildAudit(context.Background(), app, &infra{}, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, p.reader, "memory storage answers queries")
	require.NotNil(t, p.retention, "memory storage can be pruned")

	p.start()
	p.logger.Record(context.Background(), audit.NewEvent("comment.submit", audit.WithIP("203.0.113.7")))
	require.NoError(t, p.stop(context.Background(), nil))

	events, err := p.reader.Query(context.Background(), audit.Criteria{Action: "comment.submit"}.Normalize())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, "203.0.113.7", events[0].IP)
}

func TestBuildAuditWithoutReader(t *testing.T) {
	t.Parallel()

	p, err := buildAudit(context.Background(), appConfig{AuditSinks: []string{driverSlog}}, &infra{}, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, p.reader)
	assert.Nil(t, p.retention)
	require.NoError(t, p.stop(context.Background(), nil))
}

func TestBuildAuditRejectsShortHashKey(t *testing.T) {
	t.Parallel()

	_, err := buildAudit(context.Background(), appConfig{AuditSinks: []string{driverMemory}, AuditIPHashKey: "short"}, &infra{}, logger.Discard())
	assert.Error(t, err)
}

func TestBuildIdentity(t *testing.T) {
	t.Parallel()

	req := func(header, value string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(header, value)
		return r
	}
	base := appConfig{
		APITokens:       []string{"s3cret:alice:Admin"},
		ActorIDHeader:   "X-Actor-ID",
		ActorRoleHeader: "X-Actor-Role",
	}

	res, err := buildIdentity(base)
	require.NoError(t, err)
	actor, ok := res.CurrentActor(req("Authorization", "Bearer s3cret"))
	require.True(t, ok)
	assert.Equal(t, identity.Actor{ID: "alice", Role: identity.RoleAdmin}, actor)

	_, ok = res.CurrentActor(req("X-Actor-ID", "bob"))
	assert.False(t, ok, "headers are ignored unless trusted")

	trusted := base
	trusted.TrustActorHeaders = true
	res, err = buildIdentity(trusted)
	require.NoError(t, err)
	r := req("X-Actor-ID", "bob")
	r.Header.Set("X-Actor-Role", "Editor")
	actor, ok = res.CurrentActor(r)
	require.True(t, ok)
	assert.Equal(t, "bob", actor.ID)

	_, err = buildIdentity(appConfig{APITokens: []string{"bad"}})
	assert.Error(t, err)
}
