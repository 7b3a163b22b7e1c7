// Package redis connects to Redis with go-redis/v9. The client backs the
// shared rate limiter store and the Redis stream audit storage.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	limiterStore := ratelimiter.NewRedisStore(client, "")
//	auditStorage := audit.NewRedisStreamStorage(client, "", 0)
//
// Healthcheck adapts any redis.UniversalClient to the httpserver health
// check signature.
package redis
