package email_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsguard/pkg/email"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	valid := email.Message{To: "mod@example.com", Subject: "New comment", TextBody: "body"}
	require.NoError(t, valid.Validate())

	tests := []email.Message{
		{To: "not-an-address", Subject: "s", TextBody: "b"},
		{To: "mod@example.com", TextBody: "b"},
		{To: "mod@example.com", Subject: "s"},
	}
	for _, msg := range tests {
		assert.ErrorIs(t, msg.Validate(), email.ErrInvalidMessage)
	}
}

func TestNewPostmarkSender_Config(t *testing.T) {
	t.Parallel()

	_, err := email.NewPostmarkSender(email.Config{SenderEmail: "cms@example.com"})
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewPostmarkSender(email.Config{PostmarkServerToken: "tok", SenderEmail: "nope"})
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewPostmarkSender(email.Config{PostmarkServerToken: "tok", SenderEmail: "cms@example.com", ReplyToEmail: "x"})
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	s, err := email.NewPostmarkSender(email.Config{PostmarkServerToken: "tok", SenderEmail: "cms@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, s)

	assert.True(t, email.Config{PostmarkServerToken: "tok", SenderEmail: "cms@example.com"}.Enabled())
	assert.False(t, email.Config{}.Enabled())
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := email.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := s.Send(context.Background(), email.Message{To: "moderator@example.com", Subject: "New comment", TextBody: "hello"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "m*******r@example.com")
	assert.NotContains(t, buf.String(), "moderator@example.com")
	assert.Contains(t, buf.String(), "New comment")
}
