package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// DefaultOpenSearchIndex is the index used when none is given.
const DefaultOpenSearchIndex = "audit-events"

// OpenSearchStorage indexes events for search and dashboards.
type OpenSearchStorage struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchStorage(client *opensearch.Client, index string) *OpenSearchStorage {
	if index == "" {
		index = DefaultOpenSearchIndex
	}
	return &OpenSearchStorage{client: client, index: index}
}

func (s *OpenSearchStorage) Store(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	body, err := bulkBody(s.index, events)
	if err != nil {
		return err
	}

	req := opensearchapi.BulkRequest{Body: body}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Join(ErrStorageNotAvailable, fmt.Errorf("bulk index: %s", res.Status()))
	}

	var reply struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return fmt.Errorf("audit: decode bulk response: %w", err)
	}
	if reply.Errors {
		return errors.Join(ErrStorageNotAvailable, errors.New("bulk index: some documents were rejected"))
	}
	return nil
}

// bulkBody renders events as an NDJSON bulk request. Event ids double as
// document ids so retried batches do not duplicate.
func bulkBody(index string, events []Event) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": e.ID}}
		if err := enc.Encode(meta); err != nil {
			return nil, err
		}
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("audit: encode event %s: %w", e.ID, err)
		}
	}
	return &buf, nil
}

func (s *OpenSearchStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf(`{"query":{"range":{"created_at":{"lt":%q}}}}`, before.UTC().Format(time.RFC3339Nano))

	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(query),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, errors.Join(ErrStorageNotAvailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, errors.Join(ErrStorageNotAvailable, fmt.Errorf("delete by query: %s", res.Status()))
	}

	var reply struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return 0, fmt.Errorf("audit: decode delete response: %w", err)
	}
	return reply.Deleted, nil
}
