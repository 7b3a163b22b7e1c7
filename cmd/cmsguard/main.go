// Command cmsguard serves the comment moderation and article publication API
// behind the inbound request screen.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/cmsguard/modules/cms"
	"github.com/dmitrymomot/cmsguard/pkg/clientip"
	"github.com/dmitrymomot/cmsguard/pkg/email"
	"github.com/dmitrymomot/cmsguard/pkg/httpserver"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/ratelimiter"
	"github.com/dmitrymomot/cmsguard/pkg/requestid"
	"github.com/dmitrymomot/cmsguard/pkg/screen"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
	"github.com/dmitrymomot/cmsguard/svc/identity"
	"github.com/dmitrymomot/cmsguard/svc/moderation"
	"github.com/dmitrymomot/cmsguard/svc/publication"
)

const rateLimitPrefix = "cmsguard:ratelimit:"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(s.app.Env, s.app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if s.app.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevel(logger.ParseLevel(s.app.LogLevel)))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	ipResolver, err := clientip.NewResolver(s.app.TrustedProxies)
	if err != nil {
		return err
	}
	actors, err := buildIdentity(s.app)
	if err != nil {
		return err
	}
	detector, rules, err := buildDetector(s.app)
	if err != nil {
		return err
	}
	var sender email.Sender
	if len(s.email.ModeratorEmails) > 0 {
		if sender, err = buildSender(s.email, log); err != nil {
			return err
		}
	}

	inf, err := connectInfra(ctx, s.app, log)
	if err != nil {
		return errors.Join(err, inf.close(context.WithoutCancel(ctx), log))
	}
	auditing, err := buildAudit(ctx, s.app, inf, log)
	if err != nil {
		return errors.Join(err, inf.close(context.WithoutCancel(ctx), log))
	}
	limiter, releaseLimiter, err := buildLimiter(s, inf, auditing, log)
	if err != nil {
		cleanupCtx := context.WithoutCancel(ctx)
		return errors.Join(err, auditing.stop(cleanupCtx, log), inf.close(cleanupCtx, log))
	}

	articles := publication.NewService(inf.articleStore(s.app), detector,
		publication.WithAuditSink(auditing.logger),
		publication.WithLogger(log),
	)

	commentOpts := []moderation.Option{
		moderation.WithArticleGuard(articles),
		moderation.WithAuditSink(auditing.logger),
		moderation.WithLogger(log),
	}
	var notifier *moderation.EmailNotifier
	if sender != nil {
		notifier = moderation.NewEmailNotifier(sender, s.email.ModeratorEmails,
			moderation.WithNotifierLogger(log),
			moderation.WithSendTimeout(s.app.NotifySendTimeout),
		)
		commentOpts = append(commentOpts, moderation.WithNotifier(notifier))
	}
	comments := moderation.NewService(inf.commentStore(s.app), detector, commentOpts...)

	router := cms.Router(cms.RouterOptions{
		Comments: comments,
		Articles: articles,
		Screen: screen.New(detector,
			screen.WithSafeHeaders(rules.SafeHeaders...),
			screen.WithAuditSink(auditing.logger),
			screen.WithLogger(log),
		),
		ClientIP:        ipResolver,
		Identity:        actors,
		Audit:           auditing.reader,
		AuditSink:       auditing.logger,
		SubmitLimiter:   limiter,
		HealthChecks:    inf.checks,
		SecurityHeaders: s.secHeaders,
		Logger:          log,
	})

	srv := httpserver.NewFromConfig(s.http,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(context.Context, *slog.Logger) error {
			auditing.start()
			return nil
		}),
		httpserver.WithStopHook(func(ctx context.Context, _ *slog.Logger) error {
			if notifier == nil {
				return nil
			}
			return notifier.Wait(ctx)
		}),
		httpserver.WithStopHook(auditing.stop),
		httpserver.WithStopHook(func(context.Context, *slog.Logger) error {
			releaseLimiter()
			return nil
		}),
		httpserver.WithStopHook(inf.close),
	)

	if err := srv.Run(ctx, router); err != nil {
		if errors.Is(err, httpserver.ErrStart) {
			// Run returns before shutdown when listening fails; release
			// connections through the stop hooks.
			return errors.Join(err, srv.Shutdown(context.WithoutCancel(ctx)))
		}
		return err
	}
	return nil
}

func buildDetector(app appConfig) (*threat.Detector, threat.Rules, error) {
	var rules threat.Rules
	if app.ThreatRulesFile != "" {
		var err error
		if rules, err = threat.LoadRules(app.ThreatRulesFile); err != nil {
			return nil, rules, err
		}
	}
	d, err := threat.New(threat.WithRules(rules))
	return d, rules, err
}

func buildIdentity(app appConfig) (identity.Resolver, error) {
	tokens, err := identity.ParseTokens(app.APITokens)
	if err != nil {
		return nil, err
	}
	tokenResolver, err := identity.NewTokenResolver(tokens)
	if err != nil {
		return nil, err
	}
	if !app.TrustActorHeaders {
		return tokenResolver, nil
	}
	return identity.Chain(tokenResolver, identity.HeaderResolver{
		IDHeader:   app.ActorIDHeader,
		RoleHeader: app.ActorRoleHeader,
	}), nil
}

func buildSender(cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if !cfg.Enabled() {
		log.Warn("postmark is not configured, moderator notifications are logged only")
		return email.NewLogSender(log), nil
	}
	return email.NewPostmarkSender(cfg)
}

func buildLimiter(s settings, inf *infra, auditing *auditPipeline, log *slog.Logger) (func(http.Handler) http.Handler, func(), error) {
	var (
		store   ratelimiter.Store
		release = func() {}
	)
	if s.app.RateLimitStore == driverRedis {
		store = ratelimiter.NewRedisStore(inf.redis, rateLimitPrefix)
	} else {
		mem := ratelimiter.NewMemoryStore()
		store, release = mem, mem.Close
	}

	bucket, err := ratelimiter.NewBucket(store, s.rateLimit)
	if err != nil {
		release()
		return nil, nil, err
	}
	mw := ratelimiter.Middleware(bucket, ratelimiter.ByClientIP,
		ratelimiter.WithLogger(log),
		ratelimiter.WithAuditSink(auditing.logger),
	)
	return mw, release, nil
}
