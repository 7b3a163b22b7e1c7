package publication

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/cmsguard/pkg/pg"
)

// DefaultPostgresTable is created by the bundled migrations.
const DefaultPostgresTable = "articles"

var articleColumns = []string{
	"id", "title", "summary", "content", "source_url", "status",
	"author_id", "published_at", "created_at", "updated_at",
}

// PostgresStore keeps articles in a PostgreSQL table.
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

func (s *PostgresStore) Create(ctx context.Context, a Article) error {
	query, args, err := s.psql.Insert(s.table).Columns(articleColumns...).Values(
		a.ID, a.Title, a.Summary, a.Content, a.SourceURL, string(a.Status),
		a.AuthorID, a.PublishedAt, a.CreatedAt, a.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("publication: insert article %s: %w", a.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Article, error) {
	query, args, err := s.psql.Select(articleColumns...).From(s.table).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Article{}, err
	}
	a, err := scanArticle(s.db.QueryRow(ctx, query, args...))
	if pg.IsNotFoundError(err) {
		return Article{}, ErrArticleNotFound
	}
	if err != nil {
		return Article{}, fmt.Errorf("publication: get article %s: %w", id, err)
	}
	return a, nil
}

func (s *PostgresStore) Revise(ctx context.Context, id string, r Revision) (bool, error) {
	query, args, err := s.reviseQuery(id, r)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("publication: revise article %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) reviseQuery(id string, r Revision) (string, []any, error) {
	return s.psql.Update(s.table).
		Set("title", r.Title).
		Set("summary", r.Summary).
		Set("content", r.Content).
		Set("source_url", r.SourceURL).
		Set("updated_at", r.At).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func (s *PostgresStore) CompareAndTransition(ctx context.Context, id string, t Transition) (bool, error) {
	query, args, err := s.transitionQuery(id, t)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("publication: transition article %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) transitionQuery(id string, t Transition) (string, []any, error) {
	q := s.psql.Update(s.table).
		Set("status", string(t.To)).
		Set("updated_at", t.At)
	if t.PublishedAt != nil {
		q = q.Set("published_at", *t.PublishedAt)
	}
	return q.Where(sq.Eq{"id": id, "status": string(t.From)}).ToSql()
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Article, error) {
	query, args, err := s.listQuery(f.Normalize())
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("publication: list articles: %w", err)
	}
	defer rows.Close()

	out := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) listQuery(f Filter) (string, []any, error) {
	q := s.psql.Select(articleColumns...).From(s.table).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	return q.ToSql()
}

func scanArticle(row pgx.Row) (Article, error) {
	var (
		a      Article
		status string
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Summary, &a.Content, &a.SourceURL, &status,
		&a.AuthorID, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Article{}, err
		}
		return Article{}, fmt.Errorf("publication: scan article: %w", err)
	}
	a.Status = Status(status)
	return a, nil
}
