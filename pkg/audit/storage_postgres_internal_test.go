package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStorage_InsertQuery(t *testing.T) {
	t.Parallel()

	s := NewPostgresStorage(nil, "")
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := s.insertQuery([]Event{
		{ID: "1", Action: "comment.approved", Result: ResultSuccess, Metadata: map[string]any{"k": "v"}, CreatedAt: ts},
		{ID: "2", Action: "request.rejected", Result: ResultRejected, CreatedAt: ts},
	})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO audit_events (id,action,resource,resource_id,result,reason,actor_id,actor_role,request_id,ip,user_agent,metadata,created_at) VALUES ($1,")
	assert.Contains(t, query, "$26)")
	assert.Contains(t, query, "ON CONFLICT (id) DO NOTHING")
	require.Len(t, args, 26)
	assert.Equal(t, []byte(`{"k":"v"}`), args[11])
	assert.Nil(t, args[24])
}

func TestPostgresStorage_SelectQuery(t *testing.T) {
	t.Parallel()

	s := NewPostgresStorage(nil, "audit_log")
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := s.selectQuery(Criteria{
		Action:     "comment.approved",
		ResourceID: "c1",
		Since:      since,
		Limit:      10,
		Offset:     20,
	}.Normalize())
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, action, resource, resource_id, result, reason, actor_id, actor_role, request_id, ip, user_agent, metadata, created_at "+
			"FROM audit_log WHERE action = $1 AND resource_id = $2 AND created_at >= $3 ORDER BY created_at DESC LIMIT 10 OFFSET 20",
		query)
	assert.Equal(t, []any{"comment.approved", "c1", since}, args)
}
