package publication

import "github.com/dmitrymomot/cmsguard/core"

var (
	ErrArticleNotFound = core.NewError(core.KindNotFound, "Article not found")
	ErrInvalidState    = core.NewError(core.KindInvalidOperation, "The article cannot change to the requested state")
	ErrDuplicateID     = core.NewError(core.KindInvalidOperation, "Article already exists")
)
