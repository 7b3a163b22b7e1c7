package moderation

import "time"

// Status is the moderation state of a comment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Event triggers a moderation transition.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// Comment is a reader comment on an article. Text fields are sanitized
// before the comment is stored.
type Comment struct {
	ID          string     `json:"id"`
	ArticleID   string     `json:"articleId"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"authorEmail"`
	AuthorURL   string     `json:"authorUrl,omitempty"`
	Content     string     `json:"content"`
	Status      Status     `json:"status"`
	IP          string     `json:"ip,omitempty"`
	UserAgent   string     `json:"userAgent,omitempty"`
	ModeratedBy string     `json:"moderatedBy,omitempty"`
	ModeratedAt *time.Time `json:"moderatedAt,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (c Comment) IsPending() bool  { return c.Status == StatusPending }
func (c Comment) IsApproved() bool { return c.Status == StatusApproved }

// PublicComment is the view of an approved comment shown to readers. It
// omits the author email and client metadata.
type PublicComment struct {
	ID          string    `json:"id"`
	ArticleID   string    `json:"articleId"`
	AuthorName  string    `json:"authorName"`
	AuthorURL   string    `json:"authorUrl,omitempty"`
	Content     string    `json:"content"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Public returns the reader view of c.
func (c Comment) Public() PublicComment {
	return PublicComment{
		ID:          c.ID,
		ArticleID:   c.ArticleID,
		AuthorName:  c.AuthorName,
		AuthorURL:   c.AuthorURL,
		Content:     c.Content,
		SubmittedAt: c.SubmittedAt,
	}
}

// SubmitInput is an untrusted comment submission. IP and UserAgent are
// filled in from the request by the transport layer.
type SubmitInput struct {
	ArticleID   string `json:"articleId"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	AuthorURL   string `json:"authorUrl"`
	Content     string `json:"content"`
	IP          string `json:"-"`
	UserAgent   string `json:"-"`
}
