package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/clientip"
	"github.com/dmitrymomot/cmsguard/pkg/requestid"
	"github.com/dmitrymomot/cmsguard/svc/identity"
)

const (
	auditBatchSize    = 100
	auditBatchTimeout = time.Second
)

type auditPipeline struct {
	logger    *audit.Logger
	reader    audit.Reader
	retention *audit.Retention
}

// buildAudit assembles the configured storages behind one buffered logger.
// The first storage able to answer queries backs the audit endpoint.
func buildAudit(ctx context.Context, app appConfig, inf *infra, log *slog.Logger) (*auditPipeline, error) {
	var (
		storages audit.Multi
		reader   audit.Reader
		pruners  audit.Multi
	)
	for _, name := range app.AuditSinks {
		var s audit.Storage
		switch name {
		case driverMemory:
			s = audit.NewMemoryStorage()
		case driverSlog:
			s = audit.NewSlogStorage(log, slog.LevelInfo)
		case driverPostgres:
			s = audit.NewPostgresStorage(inf.pool, audit.DefaultPostgresTable)
		case driverRedis:
			s = audit.NewRedisStreamStorage(inf.redis, app.AuditRedisStream, app.AuditRedisMaxLen)
		case driverMongo:
			ms := audit.NewMongoStorage(inf.mongo, app.AuditMongoCollection)
			if err := ms.EnsureIndexes(ctx); err != nil {
				return nil, fmt.Errorf("audit mongo indexes: %w", err)
			}
			s = ms
		case driverOpenSearch:
			s = audit.NewOpenSearchStorage(inf.search, inf.searchIndex)
		default:
			return nil, fmt.Errorf("unknown audit sink %q", name)
		}
		storages = append(storages, s)
		if r, ok := s.(audit.Reader); ok && reader == nil {
			reader = r
		}
		if _, ok := s.(audit.Pruner); ok {
			pruners = append(pruners, s)
		}
	}

	opts := []audit.Option{
		audit.WithLogger(log),
		audit.WithBuffer(app.AuditBufferSize, auditBatchSize, auditBatchTimeout),
		audit.WithRequestIDExtractor(requestid.Extract),
		audit.WithIPExtractor(clientip.ExtractIP),
		audit.WithUserAgentExtractor(clientip.ExtractUserAgent),
		audit.WithActorExtractor(identity.Extract),
	}
	if app.AuditIPHashKey != "" {
		hasher, err := audit.NewKeyedHasher([]byte(app.AuditIPHashKey))
		if err != nil {
			return nil, err
		}
		opts = append(opts, audit.WithIPHasher(hasher))
	}

	p := &auditPipeline{logger: audit.NewLogger(storages, opts...), reader: reader}

	if len(pruners) > 0 && app.AuditRetention > 0 {
		ret, err := audit.NewRetention(pruners, app.AuditRetention, app.AuditRetentionSchedule,
			audit.WithRetentionLogger(log))
		if err != nil {
			_ = p.logger.Close(ctx)
			return nil, err
		}
		p.retention = ret
	}
	return p, nil
}

func (p *auditPipeline) start() {
	if p.retention != nil {
		p.retention.Start()
	}
}

func (p *auditPipeline) stop(ctx context.Context, _ *slog.Logger) error {
	if p.retention != nil {
		if err := p.retention.Stop(ctx); err != nil {
			return err
		}
	}
	return p.logger.Close(ctx)
}
