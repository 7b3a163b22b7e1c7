// Package email sends transactional notifications.
//
// Sender is implemented by PostmarkSender for production delivery and by
// LogSender, which writes messages to a slog.Logger, for local development
// and deployments without a mail provider.
//
//	sender, err := email.NewPostmarkSender(cfg)
//	err = sender.Send(ctx, email.Message{To: "mod@example.com", Subject: "...", TextBody: "..."})
package email
