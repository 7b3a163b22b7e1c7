package cms

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/cmsguard/handler"
	"github.com/dmitrymomot/cmsguard/pkg/audit"
	"github.com/dmitrymomot/cmsguard/pkg/binder"
	"github.com/dmitrymomot/cmsguard/pkg/validator"
	"github.com/dmitrymomot/cmsguard/svc/identity"
)

type auditRequest struct {
	Action     string       `query:"action"`
	Resource   string       `query:"resource"`
	ResourceID string       `query:"resourceId"`
	ActorID    string       `query:"actorId"`
	Result     audit.Result `query:"result"`
	Since      time.Time    `query:"since"`
	Until      time.Time    `query:"until"`
	Limit      int          `query:"limit"`
	Offset     int          `query:"offset"`
}

func (h *handlers) queryAudit() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, req auditRequest) handler.Response {
		err := validator.Apply(validator.When(req.Result != "",
			validator.OneOf("result", req.Result, audit.ResultSuccess, audit.ResultRejected, audit.ResultFailure)))
		if err != nil {
			return h.invalid(ctx, err)
		}

		c := audit.Criteria{
			Action:     req.Action,
			Resource:   req.Resource,
			ResourceID: req.ResourceID,
			ActorID:    req.ActorID,
			Result:     req.Result,
			Since:      req.Since,
			Until:      req.Until,
			Limit:      req.Limit,
			Offset:     req.Offset,
		}.Normalize()

		events, err := h.audit.Query(ctx, c)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(events, handler.WithJSONMeta(pageMeta(c.Limit, c.Offset, len(events))))
	},
		handler.WithBinders[handler.Context, auditRequest](h.audited([]handler.Bind{binder.Query()})...),
		handler.WithErrorHandler[handler.Context, auditRequest](handler.NewErrorHandler[handler.Context](h.log)),
		handler.WithDecorators(identity.Require[handler.Context, auditRequest](identity.RoleAdmin)),
	)
}
