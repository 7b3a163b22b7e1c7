// Package mongo connects to MongoDB with the official v2 driver. It backs
// the MongoDB audit storage.
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	storage := audit.NewMongoStorage(db, "")
//
// New retries the connection and ping cfg.RetryAttempts times and returns
// ErrFailedToConnectToMongo joined with the last driver error. Healthcheck
// adapts a client to the httpserver health check signature.
package mongo
