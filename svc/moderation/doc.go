// Package moderation implements the comment approval workflow.
//
// Every comment enters the store as pending. Only an Admin can move it to
// approved or rejected, and only approved comments are returned by public
// listings. Rejection is final: there is no path back to pending.
//
//	svc := moderation.NewService(moderation.NewMemoryStore(), detector,
//		moderation.WithAuditSink(auditLogger),
//		moderation.WithArticleGuard(articles),
//	)
//
//	c, err := svc.Submit(ctx, moderation.SubmitInput{...})
//	c, err = svc.Approve(ctx, c.ID, actor)
//
// Transitions are applied with a compare-and-set on the stored status, so two
// moderators racing on the same comment cannot both succeed. The loser gets
// ErrInvalidState, or ErrCommentNotFound if the comment was deleted.
//
// Bulk operations apply each id independently and report a per-id outcome.
// The call itself only fails on authorization.
package moderation
