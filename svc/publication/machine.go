package publication

import "github.com/dmitrymomot/cmsguard/pkg/statemachine"

// Machine is the publication graph. Archived is terminal.
var Machine = statemachine.MustNew(StatusDraft,
	statemachine.T(StatusDraft, StatusPublished, EventPublish),
	statemachine.T(StatusPublished, StatusArchived, EventUnpublish),
	statemachine.T(StatusDraft, StatusArchived, EventArchive),
	statemachine.T(StatusPublished, StatusArchived, EventArchive),
)
