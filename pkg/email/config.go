package email

// Config configures the Postmark sender and moderator recipients.
type Config struct {
	PostmarkServerToken  string   `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string   `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string   `env:"SENDER_EMAIL"`
	ReplyToEmail         string   `env:"REPLY_TO_EMAIL"`
	ModeratorEmails      []string `env:"MODERATOR_EMAILS" envSeparator:","`
}

// Enabled reports whether Postmark delivery is configured.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != "" && c.SenderEmail != ""
}
