// Package publication implements the article lifecycle.
//
// Articles are created as drafts by Editors or Admins. Only an Admin can
// publish or archive them. Publishing stamps PublishedAt; archiving hides
// the article from public reads but keeps it for history.
//
//	draft ──publish──▶ published ──unpublish/archive──▶ archived
//	  └───────────────archive──────────────────────────────▲
//
// Article bodies may carry a safe subset of HTML. Titles and summaries are
// plain text. Every write runs ValidateDraft before anything is sanitized or
// stored.
package publication
