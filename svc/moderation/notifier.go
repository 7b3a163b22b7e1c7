package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/cmsguard/pkg/email"
	"github.com/dmitrymomot/cmsguard/pkg/logger"
	"github.com/dmitrymomot/cmsguard/pkg/sanitizer"
)

// Notifier is told about comments that entered the moderation queue.
// Implementations must not block the caller.
type Notifier interface {
	CommentPending(ctx context.Context, c Comment)
}

const notificationTag = "comment-pending"

// EmailNotifier mails every moderator address about a new pending comment.
// Delivery runs in the background and failures are only logged.
type EmailNotifier struct {
	sender     email.Sender
	recipients []string
	log        *slog.Logger
	timeout    time.Duration
	wg         sync.WaitGroup
}

// NotifierOption configures an EmailNotifier.
type NotifierOption func(*EmailNotifier)

func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *EmailNotifier) {
		if l != nil {
			n.log = l
		}
	}
}

// WithSendTimeout bounds each delivery attempt.
func WithSendTimeout(d time.Duration) NotifierOption {
	return func(n *EmailNotifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

func NewEmailNotifier(sender email.Sender, recipients []string, opts ...NotifierOption) *EmailNotifier {
	if sender == nil {
		panic("moderation: email sender cannot be nil")
	}
	n := &EmailNotifier{
		sender:     sender,
		recipients: recipients,
		log:        logger.Discard(),
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.log = n.log.With(logger.Component("moderation.notifier"))
	return n
}

func (n *EmailNotifier) CommentPending(ctx context.Context, c Comment) {
	if len(n.recipients) == 0 {
		return
	}
	msg := pendingMessage(c)

	// Detached from the request so the response is not delayed by delivery.
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for _, to := range n.recipients {
			n.send(ctx, to, msg)
		}
	}()
}

func (n *EmailNotifier) send(ctx context.Context, to string, msg email.Message) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg.To = to
	if err := n.sender.Send(ctx, msg); err != nil {
		n.log.ErrorContext(ctx, "failed to notify moderator", logger.Error(err))
	}
}

// Wait blocks until queued notifications have been attempted or ctx ends.
func (n *EmailNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pendingMessage(c Comment) email.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "A new comment is awaiting moderation.\n\n")
	fmt.Fprintf(&b, "Comment: %s\n", c.ID)
	fmt.Fprintf(&b, "Article: %s\n", c.ArticleID)
	fmt.Fprintf(&b, "Author:  %s\n\n", c.AuthorName)
	b.WriteString(excerpt(c.Content))
	b.WriteString("\n")

	return email.Message{
		Subject:  "New comment awaiting moderation",
		TextBody: b.String(),
		Tag:      notificationTag,
	}
}

const excerptLength = 280

func excerpt(s string) string {
	cut := sanitizer.MaxLength(s, excerptLength)
	if cut != s {
		cut += "..."
	}
	return cut
}
