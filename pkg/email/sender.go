package email

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/cmsguard/pkg/sanitizer"
)

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single email. At least one of TextBody and HTMLBody is set.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Tag      string
}

// Validate checks the recipient and content.
func (m Message) Validate() error {
	if _, ok := sanitizer.SanitizeEmail(m.To); !ok {
		return fmt.Errorf("%w: invalid recipient", ErrInvalidMessage)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}
