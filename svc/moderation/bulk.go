package moderation

import (
	"context"

	"github.com/dmitrymomot/cmsguard/core"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/svc/identity"
)

// MaxBulkItems bounds the number of ids accepted by one bulk call.
const MaxBulkItems = 100

// BulkItem is the outcome for one id of a bulk operation.
type BulkItem struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// BulkResult reports every id of a bulk operation in request order.
type BulkResult struct {
	Items     []BulkItem `json:"items"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
}

func (r *BulkResult) add(id string, err error) {
	item := BulkItem{ID: id, OK: err == nil}
	if err != nil {
		ce := core.Classify(err)
		item.Code = ce.Code()
		item.Message = ce.Message()
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Items = append(r.Items, item)
}

// BulkApprove approves each id independently. A failure on one id does not
// stop the others.
func (s *Service) BulkApprove(ctx context.Context, ids []string, actor identity.Actor) (BulkResult, error) {
	return s.bulk(ctx, ids, actor, ActionApproved, func(id string) error {
		_, err := s.transition(ctx, id, EventApprove, actor)
		return err
	})
}

// BulkReject rejects each id independently.
func (s *Service) BulkReject(ctx context.Context, ids []string, actor identity.Actor) (BulkResult, error) {
	return s.bulk(ctx, ids, actor, ActionRejected, func(id string) error {
		_, err := s.transition(ctx, id, EventReject, actor)
		return err
	})
}

// BulkDelete deletes each id independently.
func (s *Service) BulkDelete(ctx context.Context, ids []string, actor identity.Actor) (BulkResult, error) {
	return s.bulk(ctx, ids, actor, ActionDeleted, func(id string) error {
		return s.delete(ctx, id, actor)
	})
}

func (s *Service) bulk(ctx context.Context, ids []string, actor identity.Actor, action string, apply func(id string) error) (BulkResult, error) {
	if err := s.authorize(ctx, actor, action, ""); err != nil {
		return BulkResult{}, err
	}
	if err := ValidateBulk(ids); err != nil {
		s.audit.Record(ctx, audit.NewEvent(ActionBulk,
			audit.WithResource(auditResource, ""),
			audit.WithActor(actor.ID, string(actor.Role)),
			audit.WithRejection(core.ErrValidation.Code()),
			audit.WithMeta("attempted", action),
			audit.WithMeta("count", len(ids)),
		))
		s.log.InfoContext(ctx, "bulk moderation rejected", logger.Event(action), logger.Error(err))
		return BulkResult{}, err
	}

	res := BulkResult{Items: make([]BulkItem, 0, len(ids))}
	for _, id := range ids {
		err := apply(id)
		if err != nil && core.Classify(err) == core.ErrInternal {
			s.log.ErrorContext(ctx, "bulk moderation item failed",
				logger.CommentID(id), logger.Event(action), logger.Error(err))
		}
		res.add(id, err)
	}
	return res, nil
}
