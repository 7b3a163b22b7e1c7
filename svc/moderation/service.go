package moderation

import (
	"context"
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
	ActionSubmitted = "comment.submitted"
	ActionSubmit    = "comment.submit"
	ActionApproved  = "comment.approved"
	ActionRejected  = "comment.rejected"
	ActionDeleted   = "comment.deleted"
	ActionDenied    = "comment.moderation_denied"
	ActionBulk      = "comment.bulk"

	auditResource = "comment"

	// stateDeleted is reported as the new state of a deleted comment. It is
	// never stored.
	stateDeleted = "deleted"
)

// ArticleGuard reports whether comments may be attached to an article.
type ArticleGuard interface {
	IsPublished(ctx context.Context, articleID string) (bool, error)
}

// Service runs the moderation workflow over a Store.
type Service struct {
	store    Store
	detector *threat.Detector
	articles ArticleGuard
	notifier Notifier
	audit    audit.Sink
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithArticleGuard rejects submissions to articles that are not published.
func WithArticleGuard(g ArticleGuard) Option {
	return func(s *Service) { s.articles = g }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

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
		panic("moderation: store cannot be nil")
	}
	if detector == nil {
		panic("moderation: detector cannot be nil")
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
	s.log = s.log.With(logger.Component("moderation"))
	return s
}

// Submit validates, sanitizes and stores a new pending comment.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Comment, error) {
	err := ValidateSubmission(in, s.detector)
	var clean SubmitInput
	if err == nil {
		clean = sanitizeSubmission(in)
		err = validateCleaned(clean)
	}
	if err != nil {
		s.audit.Record(ctx, audit.NewEvent(ActionSubmit,
			audit.WithResource(auditResource, ""),
			audit.WithRejection(core.ErrValidation.Code()),
			audit.WithIP(in.IP),
			audit.WithUserAgent(in.UserAgent),
			audit.WithMeta("article_id", in.ArticleID),
			audit.WithMeta("fields", validator.ExtractValidationErrors(err).Fields()),
		))
		s.log.InfoContext(ctx, "comment submission rejected", logger.Error(err))
		return Comment{}, err
	}

	if s.articles != nil {
		ok, err := s.articles.IsPublished(ctx, clean.ArticleID)
		if err != nil {
			return Comment{}, fmt.Errorf("moderation: check article %s: %w", clean.ArticleID, err)
		}
		if !ok {
			return Comment{}, ErrArticleNotFound
		}
	}

	now := s.now().UTC()
	c := Comment{
		ID:          uuid.NewString(),
		ArticleID:   clean.ArticleID,
		AuthorName:  clean.AuthorName,
		AuthorEmail: clean.AuthorEmail,
		AuthorURL:   clean.AuthorURL,
		Content:     clean.Content,
		Status:      Machine.Initial(),
		IP:          clean.IP,
		UserAgent:   clean.UserAgent,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Comment{}, fmt.Errorf("moderation: create comment: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(ActionSubmitted,
		audit.WithResource(auditResource, c.ID),
		audit.WithIP(c.IP),
		audit.WithUserAgent(c.UserAgent),
		audit.WithMeta("article_id", c.ArticleID),
		audit.WithMeta("new_state", string(c.Status)),
	))
	s.log.InfoContext(ctx, "comment submitted", logger.CommentID(c.ID), logger.ArticleID(c.ArticleID))

	if s.notifier != nil {
		s.notifier.CommentPending(ctx, c)
	}
	return c, nil
}

// Approve moves a pending comment to approved.
func (s *Service) Approve(ctx context.Context, id string, actor identity.Actor) (Comment, error) {
	if err := s.authorize(ctx, actor, ActionApproved, id); err != nil {
		return Comment{}, err
	}
	return s.transition(ctx, id, EventApprove, actor)
}

// Reject moves a pending comment to rejected. Rejection is final.
func (s *Service) Reject(ctx context.Context, id string, actor identity.Actor) (Comment, error) {
	if err := s.authorize(ctx, actor, ActionRejected, id); err != nil {
		return Comment{}, err
	}
	return s.transition(ctx, id, EventReject, actor)
}

// Delete removes a comment in any state.
func (s *Service) Delete(ctx context.Context, id string, actor identity.Actor) error {
	if err := s.authorize(ctx, actor, ActionDeleted, id); err != nil {
		return err
	}
	return s.delete(ctx, id, actor)
}

// Get returns any comment to a moderator.
func (s *Service) Get(ctx context.Context, id string, actor identity.Actor) (Comment, error) {
	if err := identity.Check(actor, identity.RoleAdmin); err != nil {
		return Comment{}, err
	}
	return s.store.Get(ctx, id)
}

// ListApproved returns the approved comments of an article. It is the only
// listing available without a moderator role.
func (s *Service) ListApproved(ctx context.Context, articleID string, limit, offset int) ([]PublicComment, error) {
	comments, err := s.store.List(ctx, Filter{
		ArticleID: articleID,
		Status:    StatusApproved,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]PublicComment, 0, len(comments))
	for _, c := range comments {
		// The filter already selects approved rows; a store that ignores it
		// must still not leak unmoderated text.
		if c.IsApproved() {
			out = append(out, c.Public())
		}
	}
	return out, nil
}

// ListPending returns the moderation queue, oldest first.
func (s *Service) ListPending(ctx context.Context, actor identity.Actor, limit, offset int) ([]Comment, error) {
	if err := identity.Check(actor, identity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.List(ctx, Filter{Status: StatusPending, Limit: limit, Offset: offset})
}

// ListAll returns comments in every state.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor, f Filter) ([]Comment, error) {
	if err := identity.Check(actor, identity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.List(ctx, f)
}

func (s *Service) transition(ctx context.Context, id string, event Event, actor identity.Actor) (Comment, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return Comment{}, err
	}

	next, err := Machine.Next(ctx, c.Status, event, nil)
	if err != nil {
		s.log.InfoContext(ctx, "comment transition refused",
			logger.CommentID(id), logger.Event(string(event)), logger.Error(err))
		return Comment{}, ErrInvalidState
	}

	at := s.now().UTC()
	ok, err := s.store.CompareAndTransition(ctx, id, Transition{
		From:    c.Status,
		To:      next,
		ActorID: actor.ID,
		At:      at,
	})
	if err != nil {
		return Comment{}, err
	}
	if !ok {
		// Lost a race: report what the comment looks like now.
		if _, err := s.store.Get(ctx, id); err != nil {
			return Comment{}, err
		}
		return Comment{}, ErrInvalidState
	}

	prev := c.Status
	c.Status = next
	c.ModeratedBy = actor.ID
	c.ModeratedAt = &at
	c.UpdatedAt = at

	s.audit.Record(ctx, audit.NewEvent(actionFor(event),
		audit.WithResource(auditResource, id),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithMeta("previous_state", string(prev)),
		audit.WithMeta("new_state", string(next)),
	))
	s.log.InfoContext(ctx, "comment moderated",
		logger.CommentID(id),
		logger.ActorID(actor.ID),
		logger.Transition(string(prev), string(next)),
	)
	return c, nil
}

func (s *Service) delete(ctx context.Context, id string, actor identity.Actor) error {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCommentNotFound
	}

	s.audit.Record(ctx, audit.NewEvent(ActionDeleted,
		audit.WithResource(auditResource, id),
		audit.WithActor(actor.ID, string(actor.Role)),
		audit.WithMeta("previous_state", string(c.Status)),
		audit.WithMeta("new_state", stateDeleted),
	))
	s.log.InfoContext(ctx, "comment deleted",
		logger.CommentID(id),
		logger.ActorID(actor.ID),
		logger.Transition(string(c.Status), stateDeleted),
	)
	return nil
}

// authorize requires an Admin and records refused attempts.
func (s *Service) authorize(ctx context.Context, actor identity.Actor, action, id string) error {
	err := identity.Check(actor, identity.RoleAdmin)
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

func actionFor(e Event) string {
	if e == EventApprove {
		return ActionApproved
	}
	return ActionRejected
}
