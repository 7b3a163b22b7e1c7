// Package audit records security-relevant events.
//
// A Logger accepts events through Record, enriches them from the request
// context (trace id, client IP, user agent, actor), and hands them to a
// background worker that writes batches to a Storage. Record never blocks and
// never returns an error: when the queue is full the event is dropped and
// counted, and storage failures are only logged. Callers therefore cannot fail
// a request because auditing is slow or down.
//
//	store := audit.NewMemoryStorage()
//	log := audit.NewLogger(store, audit.WithLogger(slogger))
//	defer log.Close(ctx)
//
//	log.Record(ctx, audit.NewEvent("comment.approved",
//		audit.WithResource("comment", id),
//		audit.WithActor(actor.ID, string(actor.Role)),
//	))
//
// Storages are provided for memory, slog, PostgreSQL, MongoDB, Redis streams
// and OpenSearch. Multi fans a batch out to several of them. Storages that
// implement Pruner can be scheduled for retention with NewRetention.
package audit
