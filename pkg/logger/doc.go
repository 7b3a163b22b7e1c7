// Package logger builds *slog.Logger instances for the service.
//
// New returns a logger with JSON or text output, a level, static attributes
// and a set of context extractors. Extractors run on every record and pull
// request-scoped values (trace id, client IP, actor) out of the context, so
// call sites only need the *Context logging methods:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "cmsguard"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "comment approved", logger.CommentID(id), logger.ActorID(actor.ID))
//
// The attribute helpers in attr.go keep key names consistent across packages.
package logger
