package logger

import "log/slog"

// Error records err under the key "error". Nil errors produce an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records an event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// RequestID records the request trace identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// ActorID records the acting user under the key "actor_id".
func ActorID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("actor_id", id)
}

// Role records a role name under the key "role".
func Role(role string) slog.Attr {
	if role == "" {
		return slog.Attr{}
	}
	return slog.String("role", role)
}

// CommentID records a comment identifier under the key "comment_id".
func CommentID(id string) slog.Attr {
	return slog.String("comment_id", id)
}

// ArticleID records an article identifier under the key "article_id".
func ArticleID(id string) slog.Attr {
	return slog.String("article_id", id)
}

// Verdict records a threat classification under the key "verdict".
func Verdict(kind, signature string) slog.Attr {
	return slog.Group("verdict", slog.String("kind", kind), slog.String("signature", signature))
}

// Transition records a state change under the key "transition".
func Transition(from, to string) slog.Attr {
	return slog.Group("transition", slog.String("from", from), slog.String("to", to))
}

// Count records a counter under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
