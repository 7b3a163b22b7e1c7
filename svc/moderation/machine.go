package moderation

import "github.com/dmitrymomot/cmsguard/pkg/statemachine"

// Machine is the moderation graph. Approved and rejected are terminal.
var Machine = statemachine.MustNew(StatusPending,
	statemachine.T(StatusPending, StatusApproved, EventApprove),
	statemachine.T(StatusPending, StatusRejected, EventReject),
)
