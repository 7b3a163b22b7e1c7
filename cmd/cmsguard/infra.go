package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	opensearchapi "github.com/opensearch-project/opensearch-go/v2"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/cmsguard/migrations"
	"github.com/dmitrymomot/cmsguard/pkg/config"
	"github.com/dmitrymomot/cmsguard/pkg/httpserver"
	"github.com/dmitrymomot/cmsguard/pkg/mongo"
	"github.com/dmitrymomot/cmsguard/pkg/opensearch"
	"github.com/dmitrymomot/cmsguard/pkg/pg"
	"github.com/dmitrymomot/cmsguard/pkg/redis"
	"github.com/dmitrymomot/cmsguard/svc/moderation"
	"github.com/dmitrymomot/cmsguard/svc/publication"
)

// infra holds the external connections selected by configuration. Unused
// backends stay nil.
type infra struct {
	pool        *pgxpool.Pool
	redis       *goredis.Client
	mongo       *mongodriver.Database
	search      *opensearchapi.Client
	searchIndex string

	checks  map[string]httpserver.Check
	closers []httpserver.Hook
}

func connectInfra(ctx context.Context, app appConfig, log *slog.Logger) (*infra, error) {
	inf := &infra{checks: make(map[string]httpserver.Check)}

	if app.usesPostgres() {
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return inf, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return inf, err
		}
		inf.pool = pool
		inf.checks["postgres"] = pg.Healthcheck(pool)
		inf.closers = append(inf.closers, func(context.Context, *slog.Logger) error {
			pool.Close()
			return nil
		})
		if err := pg.Migrate(ctx, pool, cfg, log, migrations.FS); err != nil {
			return inf, err
		}
	}

	if app.usesRedis() {
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return inf, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return inf, err
		}
		inf.redis = client
		inf.checks["redis"] = redis.Healthcheck(client)
		inf.closers = append(inf.closers, func(context.Context, *slog.Logger) error {
			return client.Close()
		})
	}

	if app.hasAuditSink(driverMongo) {
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return inf, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return inf, err
		}
		inf.mongo = db
		inf.checks["mongo"] = mongo.Healthcheck(db.Client())
		inf.closers = append(inf.closers, func(ctx context.Context, _ *slog.Logger) error {
			return db.Client().Disconnect(ctx)
		})
	}

	if app.hasAuditSink(driverOpenSearch) {
		var cfg opensearch.Config
		if err := config.Load(&cfg); err != nil {
			return inf, err
		}
		client, err := opensearch.New(ctx, cfg)
		if err != nil {
			return inf, err
		}
		inf.search = client
		inf.searchIndex = cfg.AuditIndex
		inf.checks["opensearch"] = opensearch.Healthcheck(client)
	}

	return inf, nil
}

// close releases connections in reverse order of opening.
func (inf *infra) close(ctx context.Context, log *slog.Logger) error {
	var first error
	for i := len(inf.closers) - 1; i >= 0; i-- {
		if err := inf.closers[i](ctx, log); err != nil && first == nil {
			first = err
		}
	}
	inf.closers = nil
	return first
}

func (inf *infra) commentStore(app appConfig) moderation.Store {
	if app.StoreDriver == driverPostgres {
		return moderation.NewPostgresStore(inf.pool, moderation.DefaultPostgresTable)
	}
	return moderation.NewMemoryStore()
}

func (inf *infra) articleStore(app appConfig) publication.Store {
	if app.StoreDriver == driverPostgres {
		return publication.NewPostgresStore(inf.pool, publication.DefaultPostgresTable)
	}
	return publication.NewMemoryStore()
}
