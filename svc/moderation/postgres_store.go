package moderation

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/cmsguard/pkg/pg"
)

// DefaultPostgresTable is created by the bundled migrations.
const DefaultPostgresTable = "comments"

var commentColumns = []string{
	"id", "article_id", "author_name", "author_email", "author_url", "content", "status",
	"ip", "user_agent", "moderated_by", "moderated_at", "submitted_at", "updated_at",
}

// PostgresStore keeps comments in a PostgreSQL table.
type PostgresStore struct {
	db    pg.DB
	table string
	psql  sq.StatementBuilderType
}

func NewPostgresStore(db pg.DB, table string) *PostgresStore {
	if table == "" {
		table = DefaultPostgresTable
	}
	return &PostgresStore{
		db:    db,
		table: table,
		psql:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) Create(ctx context.Context, c Comment) error {
	query, args, err := s.psql.Insert(s.table).Columns(commentColumns...).Values(
		c.ID, c.ArticleID, c.AuthorName, c.AuthorEmail, c.AuthorURL, c.Content, string(c.Status),
		c.IP, c.UserAgent, c.ModeratedBy, c.ModeratedAt, c.SubmittedAt, c.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("moderation: insert comment %s: %w", c.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Comment, error) {
	query, args, err := s.psql.Select(commentColumns...).From(s.table).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Comment{}, err
	}
	c, err := scanComment(s.db.QueryRow(ctx, query, args...))
	if pg.IsNotFoundError(err) {
		return Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("moderation: get comment %s: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) CompareAndTransition(ctx context.Context, id string, t Transition) (bool, error) {
	query, args, err := s.transitionQuery(id, t)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("moderation: transition comment %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) transitionQuery(id string, t Transition) (string, []any, error) {
	return s.psql.Update(s.table).
		Set("status", string(t.To)).
		Set("moderated_by", t.ActorID).
		Set("moderated_at", t.At).
		Set("updated_at", t.At).
		Where(sq.Eq{"id": id, "status": string(t.From)}).
		ToSql()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := s.psql.Delete(s.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("moderation: delete comment %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Comment, error) {
	query, args, err := s.listQuery(f.Normalize())
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("moderation: list comments: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) listQuery(f Filter) (string, []any, error) {
	q := s.psql.Select(commentColumns...).From(s.table).
		OrderBy("submitted_at ASC", "id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	eq := sq.Eq{}
	if f.ArticleID != "" {
		eq["article_id"] = f.ArticleID
	}
	if f.Status != "" {
		eq["status"] = string(f.Status)
	}
	if len(eq) > 0 {
		q = q.Where(eq)
	}
	return q.ToSql()
}

func scanComment(row pgx.Row) (Comment, error) {
	var (
		c      Comment
		status string
	)
	err := row.Scan(
		&c.ID, &c.ArticleID, &c.AuthorName, &c.AuthorEmail, &c.AuthorURL, &c.Content, &status,
		&c.IP, &c.UserAgent, &c.ModeratedBy, &c.ModeratedAt, &c.SubmittedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, err
		}
		return Comment{}, fmt.Errorf("moderation: scan comment: %w", err)
	}
	c.Status = Status(status)
	return c, nil
}
