package publication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/threat"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
)

// Audit actions emitted by the service.
const (
	ActionCreated     = "article.created"
	ActionCreate      = "article.create"
	ActionRevised     = "article.revised"
	ActionRevise      = "article.revise"
	ActionPublished   = "article.published"
	ActionUnpublished = "article.unpublished"
	ActionArchived    = "article.archived"
	ActionDenied      = "article.action_denied"

	auditResource = "article"
)

var (
	authorRoles    = []identity.Role{identity.RoleEditor, identity.RoleAdmin}
	publisherRoles = []identity.Role{identity.RoleAdmin}
)

// Service runs the article lifecycle over a Store.
type Service struct {
	store    Store
	detector *threat.Detector
	audit    audit.Sink
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithAuditSink(sink audit.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.audit = sink
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, detector *threat.Detector, opts ...Option) *Service {
	if store == nil {
		panic("publication: store cannot be nil")
	}
	if detector == nil {
		panic("publication: detector cannot be nil")
	}
	s := &Service{
		store:    store,
		detector: detector,
		audit:    audit.Discard,
		log:      logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("publication"))
	return s
}

// Create stores a new draft.
func (s *Service) Create(ctx context.Context, in Input, actor identity.Actor) (Article, error) {
	if err := s.authorize(ctx, actor, ActionCreated, "", authorRoles); err != nil {
		return Article{}, err
	}
	clean, err := s.validate(ctx, in, ActionCreate, "", actor)
	if err != nil {
		return Article{}, err
	}

	now := s.now().UTC()
	a := Article{
		ID:        uuid.NewString(),
		Title:     clean.Title,
		Summary:   clean.Summary,
		Content:   clean.Content,
		SourceURL: clean.SourceURL,
		Status:    Machine.Initial(),
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return Article{}, fmt.Errorf("publication: create article: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(ActionCreated,
		audit.WithResource(auditResource, a.ID),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithMeta("new_state", string(a.Status)),
	))
	s.log.InfoContext(ctx, "article created", logger.ArticleID(a.ID), logger.ActorID(actor.ID))
	return a, nil
}

// Revise replaces the editable fields of an article in any state.
func (s *Service) Revise(ctx context.Context, id string, in Input, actor identity.Actor) (Article, error) {
	if err := s.authorize(ctx, actor, ActionRevised, id, authorRoles); err != nil {
		return Article{}, err
	}
	clean, err := s.validate(ctx, in, ActionRevise, id, actor)
	if err != nil {
		return Article{}, err
	}

	ok, err := s.store.Revise(ctx, id, Revision{
		Title:     clean.Title,
		Summary:   clean.Summary,
		Content:   clean.Content,
		SourceURL: clean.SourceURL,
		At:        s.now().UTC(),
	})
	if err != nil {
		return Article{}, err
	}
	if !ok {
		return Article{}, ErrArticleNotFound
	}

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Article{}, err
	}
	s.audit.Record(ctx, audit.NewEvent(ActionRevised,
		audit.WithResource(auditResource, id),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithMeta("state", string(a.Status)),
	))
	s.log.InfoContext(ctx, "article revised", logger.ArticleID(id), logger.ActorID(actor.ID))
	return a, nil
}

// Publish moves a draft to published and stamps PublishedAt.
func (s *Service) Publish(ctx context.Context, id string, actor identity.Actor) (Article, error) {
	return s.fire(ctx, id, EventPublish, ActionPublished, actor)
}

// Unpublish archives a published article.
func (s *Service) Unpublish(ctx context.Context, id string, actor identity.Actor) (Article, error) {
	return s.fire(ctx, id, EventUnpublish, ActionUnpublished, actor)
}

// Archive retires a draft or published article.
func (s *Service) Archive(ctx context.Context, id string, actor identity.Actor) (Article, error) {
	return s.fire(ctx, id, EventArchive, ActionArchived, actor)
}

// ListPublished returns publicly visible articles, newest first.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]Article, error) {
	articles, err := s.store.List(ctx, Filter{Status: StatusPublished, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.IsPublished() {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetPublished returns a publicly visible article. Drafts and archived
// articles are reported as not found.
func (s *Service) GetPublished(ctx context.Context, id string) (Article, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if !a.IsPublished() {
		return Article{}, ErrArticleNotFound
	}
	return a, nil
}

// IsPublished reports whether id names a publicly visible article.
func (s *Service) IsPublished(ctx context.Context, id string) (bool, error) {
	_, err := s.GetPublished(ctx, id)
	if errors.Is(err, ErrArticleNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListAll returns articles in every state to authors.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor, f Filter) ([]Article, error) {
	if err := identity.Check(actor, authorRoles...); err != nil {
		return nil, err
	}
	return s.store.List(ctx, f)
}

// Get returns an article in any state to authors.
func (s *Service) Get(ctx context.Context, id string, actor identity.Actor) (Article, error) {
	if err := identity.Check(actor, authorRoles...); err != nil {
		return Article{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) fire(ctx context.Context, id string, event Event, action string, actor identity.Actor) (Article, error) {
	if err := s.authorize(ctx, actor, action, id, publisherRoles); err != nil {
		return Article{}, err
	}

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Article{}, err
	}
	next, err := Machine.Next(ctx, a.Status, event, nil)
	if err != nil {
		s.log.InfoContext(ctx, "article transition refused",
			logger.ArticleID(id), logger.Event(string(event)), logger.Error(err))
		return Article{}, ErrInvalidState
	}

	at := s.now().UTC()
	t := Transition{From: a.Status, To: next, At: at}
	if next == StatusPublished {
		t.PublishedAt = &at
	}
	ok, err := s.store.CompareAndTransition(ctx, id, t)
	if err != nil {
		return Article{}, err
	}
	if !ok {
		if _, err := s.store.Get(ctx, id); err != nil {
			return Article{}, err
		}
		return Article{}, ErrInvalidState
	}

	prev := a.Status
	a.Status = next
	a.UpdatedAt = at
	if t.PublishedAt != nil {
		a.PublishedAt = t.PublishedAt
	}

	s.audit.Record(ctx, audit.NewEvent(action,
		audit.WithResource(auditResource, id),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithMeta("previous_state", string(prev)),
		audit.WithMeta("new_state", string(next)),
	))
	s.log.InfoContext(ctx, "article state changed",
		logger.ArticleID(id),
		logger.ActorID(actor.ID),
		logger.Transition(string(prev), string(next)),
	)
	return a, nil
}

// validate runs the draft rules, sanitizes the input and re-checks that the
// required fields survived cleaning. Any rejection is audited once.
func (s *Service) validate(ctx context.Context, in Input, action, id string, actor identity.Actor) (Input, error) {
	err := ValidateDraft(in, s.detector)
	var clean Input
	if err == nil {
		clean = sanitizeDraft(in)
		err = validateCleaned(clean)
	}
	if err == nil {
		return clean, nil
	}
	s.audit.Record(ctx, audit.NewEvent(action,
		audit.WithResource(auditResource, id),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithRejection(core.ErrValidation.Code()),
		audit.WithMeta("fields", validator.ExtractValidationErrors(err).Fields()),
	))
	s.log.InfoContext(ctx, "article rejected by validation", logger.ArticleID(id), logger.Error(err))
	return Input{}, err
}

func (s *Service) authorize(ctx context.Context, actor identity.Actor, action, id string, roles []identity.Role) error {
	err := identity.Check(actor, roles...)
	if err == nil {
		return nil
	}
	s.audit.Record(ctx, audit.NewEvent(ActionDenied,
		audit.WithResource(auditResource, id),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithRejection(core.Classify(err).Code()),
		audit.WithMeta("attempted", action),
	))
	return err
}
