package publication

import "time"

// Status is the lifecycle state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Event triggers a lifecycle transition.
type Event string

const (
	EventPublish   Event = "publish"
	EventUnpublish Event = "unpublish"
	EventArchive   Event = "archive"
)

// Article is a piece of editorial content.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content"`
	SourceURL   string     `json:"sourceUrl,omitempty"`
	Status      Status     `json:"status"`
	AuthorID    string     `json:"authorId"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsPublished reports whether the article is publicly visible.
func (a Article) IsPublished() bool {
	return a.Status == StatusPublished && a.PublishedAt != nil
}

// Input is an untrusted article draft.
type Input struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	SourceURL string `json:"sourceUrl"`
}
