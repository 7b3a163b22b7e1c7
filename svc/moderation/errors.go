package moderation

import "github.com/dmitrymomot/cmsguard/core"

var (
	ErrCommentNotFound = core.NewError(core.KindNotFound, "Comment not found")
	ErrArticleNotFound = core.NewError(core.KindNotFound, "Article not found")
	ErrInvalidState    = core.NewError(core.KindInvalidOperation, "Comment is not awaiting moderation")
	ErrDuplicateID     = core.NewError(core.KindInvalidOperation, "Comment already exists")
)
