package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgExecutor is the subset of *pgxpool.Pool used by PostgresStorage.
type PgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DefaultPostgresTable is created by the bundled migrations.
const DefaultPostgresTable = "audit_events"

var pgColumns = []string{
	"id", "action", "resource", "resource_id", "result", "reason",
	"actor_id", "actor_role", "request_id", "ip", "user_agent", "metadata", "created_at",
}

// PostgresStorage stores events in a PostgreSQL table.
type PostgresStorage struct {
	db    PgExecutor
	table string
	psql  sq.StatementBuilderType
}

func NewPostgresStorage(db PgExecutor, table string) *PostgresStorage {
	if table == "" {
		table = DefaultPostgresTable
	}
	return &PostgresStorage{
		db:    db,
		table: table,
		psql:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStorage) Store(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	query, args, err := s.insertQuery(events)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	return nil
}

func (s *PostgresStorage) insertQuery(events []Event) (string, []any, error) {
	q := s.psql.Insert(s.table).Columns(pgColumns...).Suffix("ON CONFLICT (id) DO NOTHING")
	for _, e := range events {
		var md []byte
		if len(e.Metadata) > 0 {
			var err error
			if md, err = json.Marshal(e.Metadata); err != nil {
				return "", nil, fmt.Errorf("audit: encode metadata for %s: %w", e.ID, err)
			}
		}
		q = q.Values(
			e.ID, e.Action, e.Resource, e.ResourceID, string(e.Result), e.Reason,
			e.ActorID, e.ActorRole, e.RequestID, e.IP, e.UserAgent, md, e.CreatedAt,
		)
	}
	return q.ToSql()
}

func (s *PostgresStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	query, args, err := s.selectQuery(c.Normalize())
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStorageNotAvailable, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			result string
			md     []byte
		)
		if err := rows.Scan(
			&e.ID, &e.Action, &e.Resource, &e.ResourceID, &result, &e.Reason,
			&e.ActorID, &e.ActorRole, &e.RequestID, &e.IP, &e.UserAgent, &md, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Result = Result(result)
		if len(md) > 0 {
			if err := json.Unmarshal(md, &e.Metadata); err != nil {
				return nil, fmt.Errorf("audit: decode metadata for %s: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresStorage) selectQuery(c Criteria) (string, []any, error) {
	q := s.psql.Select(pgColumns...).From(s.table).
		OrderBy("created_at DESC").
		Limit(uint64(c.Limit)).
		Offset(uint64(c.Offset))

	eq := sq.Eq{}
	if c.Action != "" {
		eq["action"] = c.Action
	}
	if c.Resource != "" {
		eq["resource"] = c.Resource
	}
	if c.ResourceID != "" {
		eq["resource_id"] = c.ResourceID
	}
	if c.ActorID != "" {
		eq["actor_id"] = c.ActorID
	}
	if c.Result != "" {
		eq["result"] = string(c.Result)
	}
	if len(eq) > 0 {
		q = q.Where(eq)
	}
	if !c.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": c.Since})
	}
	if !c.Until.IsZero() {
		q = q.Where(sq.Lt{"created_at": c.Until})
	}
	return q.ToSql()
}

func (s *PostgresStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := s.psql.Delete(s.table).Where(sq.Lt{"created_at": before}).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, errors.Join(ErrStorageNotAvailable, err)
	}
	return tag.RowsAffected(), nil
}
