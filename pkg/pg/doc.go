// Package pg connects to PostgreSQL through pgx/v5 and applies goose
// migrations.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log, migrations.FS); err != nil {
//		return err
//	}
//
// Connect retries with a linear back-off until the database answers a ping.
// Migrate reads migrations from an fs.FS (usually embedded) or, when the FS
// is nil, from cfg.MigrationsPath on disk.
//
// DB is the query surface shared by pools, connections and transactions, so
// stores can accept any of them. IsNotFoundError, IsDuplicateKeyError and
// IsForeignKeyViolationError classify pgx errors.
package pg
