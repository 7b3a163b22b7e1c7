package cms

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/binder"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
	"github.com/dmitrymomot/cmsguard/svc/publication"
)

type reviseRequest struct {
	ID string `path:"id" json:"-"`
	publication.Input
}

type articleFilterRequest struct {
	Status publication.Status `query:"status"`
	Limit  int                `query:"limit"`
	Offset int                `query:"offset"`
}

func articlePage(limit, offset int) publication.Filter {
	return publication.Filter{Limit: limit, Offset: offset}.Normalize()
}

func (h *handlers) listPublishedArticles() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req pageRequest) handler.Response {
		list, err := h.articles.ListPublished(ctx, req.Limit, req.Offset)
		if err != nil {
			return handler.Error(err)
		}
		f := articlePage(req.Limit, req.Offset)
		return handler.JSON(list, handler.WithJSONMeta(pageMeta(f.Limit, f.Offset, len(list))))
	}, binder.Query())
}

func (h *handlers) getPublishedArticle() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req idRequest) handler.Response {
		a, err := h.articles.GetPublished(ctx, req.ID)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(a)
	}, binder.ChiPath())
}

func (h *handlers) listAllArticles() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req articleFilterRequest) handler.Response {
		err := validator.Apply(validator.When(req.Status != "",
			validator.OneOf("status", req.Status, publication.Machine.States()...)))
		if err != nil {
			return h.invalid(ctx, err)
		}

		f := publication.Filter{Status: req.Status, Limit: req.Limit, Offset: req.Offset}.Normalize()
		list, err := h.articles.ListAll(ctx, actor(ctx), f)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(list, handler.WithJSONMeta(pageMeta(f.Limit, f.Offset, len(list))))
	}, binder.Query())
}

func (h *handlers) getAnyArticle() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req idRequest) handler.Response {
		a, err := h.articles.Get(ctx, req.ID, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(a)
	}, binder.ChiPath())
}

func (h *handlers) createArticle() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, in publication.Input) handler.Response {
		a, err := h.articles.Create(ctx, in, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.Created(a)
	}, binder.JSON())
}

func (h *handlers) reviseArticle() http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req reviseRequest) handler.Response {
		a, err := h.articles.Revise(ctx, req.ID, req.Input, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(a)
	}, binder.ChiPath(), binder.JSON())
}

func (h *handlers) transitionArticle(fire func(context.Context, string, identity.Actor) (publication.Article, error)) http.HandlerFunc {
	return wrap(h, func(ctx handler.Context, req idRequest) handler.Response {
		a, err := fire(ctx, req.ID, actor(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(a)
	}, binder.ChiPath())
}
