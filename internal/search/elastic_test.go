package search

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-storefront/internal/apperr"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func respond(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestBackend(t *testing.T, rt roundTripFunc) *ElasticBackend {
	t.Helper()
	client, err := NewElasticClient([]string{"http://es.local:9200"}, rt)
	require.NoError(t, err)
	return NewElasticBackend(client)
}

func TestElasticBackend_Search(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)
	be := newTestBackend(t, func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		return respond(http.StatusOK, facetResponse), nil
	})

	q, err := NewBuilder("products").Paginate(16, 1).OnSale().AggregateProperties().Build()
	require.NoError(t, err)

	res, err := be.Search(t.Context(), q)
	require.NoError(t, err)

	assert.Equal(t, "/products/_search", gotPath)
	assert.Equal(t, float64(16), gotBody["size"])
	assert.Equal(t, []string{"9", "3", "7"}, res.IDs)
	assert.Len(t, res.Facets, 2) // color and brand; size has one value
}

func TestElasticBackend_Unavailable(t *testing.T) {
	q, _ := NewBuilder("products").Build()

	down := newTestBackend(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	_, err := down.Search(t.Context(), q)
	assert.ErrorIs(t, err, apperr.ErrBackendUnavailable)

	failing := newTestBackend(t, func(*http.Request) (*http.Response, error) {
		return respond(http.StatusServiceUnavailable, `{"error":"unavailable"}`), nil
	})
	_, err = failing.Search(t.Context(), q)
	assert.ErrorIs(t, err, apperr.ErrBackendUnavailable)
}

func TestElasticBackend_BadRequestIsNotUnavailable(t *testing.T) {
	q, _ := NewBuilder("products").Build()
	be := newTestBackend(t, func(*http.Request) (*http.Response, error) {
		return respond(http.StatusBadRequest, `{"error":"parsing_exception"}`), nil
	})
	_, err := be.Search(t.Context(), q)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrBackendUnavailable))
	assert.Contains(t, err.Error(), "parsing_exception")
}
