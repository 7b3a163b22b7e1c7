// Package ratelimiter implements token bucket rate limiting for HTTP
// handlers.
//
// A Bucket holds the limit configuration and delegates state to a Store.
// MemoryStore keeps buckets in process; RedisStore keeps them in Redis so
// several instances share one budget per key.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//
//	r.With(ratelimiter.Middleware(bucket, ratelimiter.ByClientIP)).Post("/comments", h)
//
// Requests over the limit get a 429 error envelope with Retry-After and the
// X-RateLimit-* headers. A denied request does not consume tokens.
package ratelimiter
