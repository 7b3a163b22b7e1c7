package cms

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/binder"
	"github.com/dmitrymomot/cmsguard/pkg/clientip"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
	"github.com/dmitrymomot/cmsguard/svc/moderation"
)

type idRequest struct {
	ID string `path:"id" json:"-"`
}

type pageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

type articleCommentsRequest struct {
	ArticleID string `path:"id"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

type commentFilterRequest struct {
	ArticleID string            `query:"articleId"`
	Status    moderation.Status `query:"status"`
	Limit     int               `query:"limit"`
	Offset    int               `query:"offset"`
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

func pageMeta(limit, offset, count int) map[string]any {
	return map[string]any{"limit": limit, "offset": offset, "count": count}
}

func commentPage(limit, offset int) moderation.Filter {
	return moderation.Filter{Limit: limit, Offset: offset}.Normalize()
}

func (h *handlers) submitComment() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, in moderation.SubmitInput) handler.Response {
		in.IP = clientip.FromContext(ctx)
		in.UserAgent = clientip.UserAgentFromContext(ctx)

		c, err := h.comments.Submit(ctx, in)
		if err != nil {
			return handler.Error(err)
		}
		return handler.Created(c.Public(), handler.WithJSONMeta(map[string]any{"status": c.Status}))
	}, binder.JSON())
}

func (h *handlers) listApprovedComments() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req articleCommentsRequest) handler.Response {
		list, err := h.comments.ListApproved(ctx, req.ArticleID, req.Limit, req.Offset)
		if err != nil {
			return handler.Error(err)
		}
		f := commentPage(req.Limit, req.Offset)
		return handler.JSON(list, handler.WithJSONMeta(pageMeta(f.Limit, f.Offset, len(list))))
	}, binder.ChiPath(), binder.Query())
}

func (h *handlers) listPendingComments() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req pageRequest) handler.Response {
		list, err := h.comments.ListPending(ctx, actor(ctx), req.Limit, req.Offset)
		if err != nil {
			return handler.Error(err)
		}
		f := commentPage(req.Limit, req.Offset)
		return handler.JSON(list, handler.WithJSONMeta(pageMeta(f.Limit, f.Offset, len(list))))
	}, binder.Query())
}

func (h *handlers) listAllComments() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req commentFilterRequest) handler.Response {
		err := validator.Apply(validator.When(req.Status != "",
			validator.OneOf("status", req.Status, moderation.Machine.States()...)))
		if err != nil {
			return h.invalid(ctx, err)
		}

		f := moderation.Filter{
			ArticleID: req.ArticleID,
			Status:    req.Status,
			Limit:     req.Limit,
			Offset:    req.Offset,
		}.Normalize()
		list, err := h.comments.ListAll(ctx, actor(ctx), f)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(list, handler.WithJSONMeta(pageMeta(f.Limit, f.Offset, len(list))))
	}, binder.Query())
}

func (h *handlers) getComment() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req idRequest) handler.Response {
		c, err := h.comments.Get(ctx, req.ID, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(c)
	}, binder.ChiPath())
}

func (h *handlers) transitionComment(fire func(context.Context, string, identity.Actor) (moderation.Comment, error)) http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req idRequest) handler.Response {
		c, err := fire(ctx, req.ID, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(c)
	}, binder.ChiPath())
}

func (h *handlers) deleteComment() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req idRequest) handler.Response {
		if err := h.comments.Delete(ctx, req.ID, actor(ctx)); err != nil {
			return handler.Error(err)
		}
		return handler.NoContent()
	}, binder.ChiPath())
}

// bulkComments answers 200 with per-id outcomes even when some ids failed.
func (h *handlers) bulkComments(apply func(context.Context, []string, identity.Actor) (moderation.BulkResult, error)) http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req bulkRequest) handler.Response {
		res, err := apply(ctx, req.IDs, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(res.Items, handler.WithJSONMeta(map[string]any{
			"succeeded": res.Succeeded,
			"failed":    res.Failed,
		}))
	}, binder.JSON())
}
