package cms

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/binder"
	"github.com/dmitrymomot/cmsguard/pkg/clientip"
	"github.com/dmitrymomot/cmsguard/pkg/httpserver"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/requestid"
	"github.com/dmitrymomot/cmsguard/pkg/screen"
	"github.com/dmitrymomot/cmsguard/pkg/secheaders"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
	"github.com/dmitrymomot/cmsguard/svc/moderation"
	"github.com/dmitrymomot/cmsguard/svc/publication"
)

// HealthTimeout bounds all readiness checks of one /healthz request.
const HealthTimeout = 2 * time.Second

// ActionInvalid is the audit action recorded for requests refused before
// they reach a service: undecodable bodies or bad query filters.
const ActionInvalid = "request.invalid"

// RouterOptions wires the services into the router. Comments, Articles,
// Screen, ClientIP and Identity are required; the rest are optional.
type RouterOptions struct {
	Comments *moderation.Service
	Articles *publication.Service
	Screen   *screen.Screen
	ClientIP *clientip.Resolver
	Identity identity.Resolver

	// Audit serves GET /audit to admins when set.
	Audit audit.Reader
	// AuditSink receives rejections of malformed requests.
	AuditSink audit.Sink
	// SubmitLimiter wraps POST /comments.
	SubmitLimiter func(http.Handler) http.Handler
	// HealthChecks turn /healthz into a readiness probe.
	HealthChecks map[string]httpserver.Check

	SecurityHeaders secheaders.Config
	Logger          *slog.Logger
}

// Router builds the chi router.
//
// Example:
//
//	r := cms.Router(cms.RouterOptions{
//		Comments: comments,
//		Articles: articles,
//		Screen:   screen.New(detector, screen.WithAuditSink(auditLog)),
//		ClientIP: ipResolver,
//		Identity: tokens,
//	})
func Router(opts RouterOptions) chi.Router {
	switch {
	case opts.Comments == nil:
		panic("cms: comments service is required")
	case opts.Articles == nil:
		panic("cms: articles service is required")
	case opts.Screen == nil:
		panic("cms: screen is required")
	case opts.ClientIP == nil:
		panic("cms: client ip resolver is required")
	case opts.Identity == nil:
		panic("cms: identity resolver is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("cms"))

	sink := opts.AuditSink
	if sink == nil {
		sink = audit.Discard
	}

	h := &handlers{
		comments: opts.Comments,
		articles: opts.Articles,
		audit:    opts.Audit,
		sink:     sink,
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		recoverer(log),
		opts.ClientIP.Middleware,
		secheaders.Middleware(opts.SecurityHeaders),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, core.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, core.ErrNotFound)
	})

	r.Get("/healthz", httpserver.HealthCheckHandler(log, HealthTimeout, opts.HealthChecks))

	r.Group(func(r chi.Router) {
		r.Use(opts.Screen.Middleware, identity.Middleware(opts.Identity))

		r.Route("/comments", func(r chi.Router) {
			submit := r.With()
			if opts.SubmitLimiter != nil {
				submit = r.With(opts.SubmitLimiter)
			}
			submit.Post("/", h.submitComment())

			r.Get("/article/{id}", h.listApprovedComments())
			r.Get("/pending", h.listPendingComments())
			r.Get("/all", h.listAllComments())
			r.Post("/bulk/approve", h.bulkComments(opts.Comments.BulkApprove))
			r.Post("/bulk/reject", h.bulkComments(opts.Comments.BulkReject))
			r.Post("/bulk/delete", h.bulkComments(opts.Comments.BulkDelete))
			r.Get("/{id}", h.getComment())
			r.Post("/{id}/approve", h.transitionComment(opts.Comments.Approve))
			r.Post("/{id}/reject", h.transitionComment(opts.Comments.Reject))
			r.Delete("/{id}", h.deleteComment())
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.listPublishedArticles())
			r.Post("/", h.createArticle())
			r.Get("/admin", h.listAllArticles())
			r.Get("/admin/{id}", h.getAnyArticle())
			r.Get("/{id}", h.getPublishedArticle())
			r.Put("/{id}", h.reviseArticle())
			r.Post("/{id}/publish", h.transitionArticle(opts.Articles.Publish))
			r.Post("/{id}/unpublish", h.transitionArticle(opts.Articles.Unpublish))
			r.Post("/{id}/archive", h.transitionArticle(opts.Articles.Archive))
		})

		if opts.Audit != nil {
			r.Get("/audit", h.queryAudit())
		}
	})

	return r
}

type handlers struct {
	comments *moderation.Service
	articles *publication.Service
	audit    audit.Reader
	sink     audit.Sink
	log      *slog.Logger
}

// wrap adapts a typed handler with audited binders and the logging error
// handler.
func wrap[R any](h *handlers, fn handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(fn,
		handler.WithBinders[handler.Context, R](h.audited(binders)...),
		handler.WithErrorHandler[handler.Context, R](handler.NewErrorHandler[handler.Context](h.log)),
	)
}

// audited records a rejection for every binder failure. A request fails at
// most one binder, so it yields at most one event.
func (h *handlers) audited(binders []handler.Bind) []handler.Bind {
	out := make([]handler.Bind, len(binders))
	for i, bind := range binders {
		out[i] = func(r *http.Request, v any) error {
			err := bind(r, v)
			if err != nil && !errors.Is(err, binder.ErrBinderNotApplicable) {
				h.reject(r, err)
			}
			return err
		}
	}
	return out
}

// invalid audits a handler-level validation failure and renders it.
func (h *handlers) invalid(ctx handler.Context, err error) handler.Response {
	h.reject(ctx.Request(), err)
	return handler.Error(err)
}

func (h *handlers) reject(r *http.Request, err error) {
	ctx := r.Context()
	code := core.Classify(err).Code()
	a, _ := identity.FromContext(ctx)

	opts := []audit.EventOption{
		audit.WithRejection(code),
		audit.WithIP(clientip.FromContext(ctx)),
		audit.WithUserAgent(r.UserAgent()),
		audit.WithMeta("method", r.Method),
		audit.WithMeta("path", r.URL.Path),
	}
	if a.ID != "" {
		opts = append(opts, audit.WithActor(a.ID, string(a.Role)))
	}
	if fields := validator.ExtractValidationErrors(err).Fields(); len(fields) > 0 {
		opts = append(opts, audit.WithMeta("fields", fields))
	}
	h.sink.Record(ctx, audit.NewEvent(ActionInvalid, opts...))

	h.log.InfoContext(ctx, "request refused",
		slog.String("code", code),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Error(err),
	)
}

// actor returns the resolved caller or the zero Actor, which services
// refuse as unauthorized.
func actor(ctx handler.Context) identity.Actor {
	a, _ := identity.FromContext(ctx)
	return a
}

// recoverer turns a panic into a logged internal error envelope.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				handler.WriteError(w, r, core.ErrInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
