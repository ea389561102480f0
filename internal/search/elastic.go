package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/imrishuroy/go-storefront/internal/apperr"
)

// ElasticBackend runs queries on Elasticsearch.
type ElasticBackend struct {
	client *elasticsearch.Client
}

// NewElasticClient builds a client for the given node addresses. transport may
// be nil to use the default HTTP transport.
func NewElasticClient(addresses []string, transport http.RoundTripper) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func NewElasticBackend(client *elasticsearch.Client) *ElasticBackend {
	return &ElasticBackend{client: client}
}

// Search posts q to its index. Connection failures and 5xx answers are
// reported as ErrBackendUnavailable.
func (e *ElasticBackend) Search(ctx context.Context, q *Query) (*Result, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(q.Index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w: %w", q.Index, apperr.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("search %s: status %d: %w", q.Index, res.StatusCode, apperr.ErrBackendUnavailable)
		}
		return nil, fmt.Errorf("search %s: status %d: %s", q.Index, res.StatusCode, bytes.TrimSpace(msg))
	}

	return ParseResponse(q, res.Body)
}
