// Package statemachine describes finite state machines as immutable,
// generic transition graphs.
//
// A Machine does not hold a current state. Next computes the state an entity
// moves to from the state it is in now, so the entity store stays the single
// source of truth and the machine can be shared by every request:
//
//	type Status string
//	type Event string
//
//	m := statemachine.MustNew[Status, Event]("pending",
//		statemachine.T[Status, Event]("pending", "approved", "approve"),
//		statemachine.T[Status, Event]("pending", "rejected", "reject"),
//	)
//
//	next, err := m.Next(ctx, comment.Status, "approve", nil)
//	if statemachine.IsNoTransitionAvailableError(err) {
//		// already approved or rejected
//	}
//
// Several transitions may share a from state and event; the first whose
// guards all pass wins.
package statemachine
