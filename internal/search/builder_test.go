package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

// body marshals q and decodes it back into a generic tree for inspection.
func body(t *testing.T, q *Query) map[string]any {
	t.Helper()
	b, err := json.Marshal(q)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func filters(t *testing.T, q *Query) []any {
	t.Helper()
	return body(t, q)["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
}

func TestCategory_DirectoryUsesPathPrefix(t *testing.T) {
	q, err := NewBuilder("products").
		Category(models.Category{ID: 2, Path: "1-", IsDirectory: true}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"prefix": map[string]any{"category_path": "1-2-"}},
	}, filters(t, q))
}

func TestCategory_LeafUsesExactID(t *testing.T) {
	q, err := NewBuilder("products").
		Category(models.Category{ID: 5, Path: "-1-2-"}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"term": map[string]any{"category_id": float64(5)}},
	}, filters(t, q))
}

func TestPaginate(t *testing.T) {
	q, err := NewBuilder("products").Paginate(16, 3).Build()
	require.NoError(t, err)
	assert.Equal(t, 32, q.From)
	assert.Equal(t, 16, q.Size)

	b := body(t, q)
	assert.Equal(t, float64(32), b["from"])
	assert.Equal(t, float64(16), b["size"])

	_, err = NewBuilder("products").Paginate(16, 0).Build()
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = NewBuilder("products").Paginate(0, 1).Build()
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestPaginate_ResultWindow(t *testing.T) {
	// last page that still fits: 624*16 + 16 = 10000
	q, err := NewBuilder("products").Paginate(16, 625).Build()
	require.NoError(t, err)
	assert.Equal(t, 9984, q.From)

	cases := map[string][2]int{
		"one page too deep":   {16, 626},
		"deep page of 100":    {100, 1000},
		"page overflows from": {16, 1 << 60},
		"size beyond window":  {MaxResultWindow + 1, 1},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewBuilder("products").Paginate(c[0], c[1]).Build()
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		})
	}
}

func TestKeywords_OneMustClauseEach(t *testing.T) {
	q, err := NewBuilder("products").Keywords("iphone", " ", "case").Build()
	require.NoError(t, err)
	require.Len(t, q.Bool.Must, 2)

	must := body(t, q)["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	first := must[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "iphone", first["query"])
	assert.Equal(t, []any{
		"title^3", "long_title^2", "category^2", "description",
		"skus_title", "skus_description", "properties_value",
	}, first["fields"])
}

func TestPropertyFilter_MatchesCombinedSignature(t *testing.T) {
	q, err := NewBuilder("products").PropertyFilter("color", "red").Build()
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"nested": map[string]any{
			"path":  "properties",
			"query": map[string]any{"term": map[string]any{"properties.search_value": "color:red"}},
		}},
	}, filters(t, q))
	assert.Equal(t, []string{"color"}, q.Pinned())
}

func TestAggregateProperties_TwoLevels(t *testing.T) {
	q, err := NewBuilder("products").AggregateProperties().Build()
	require.NoError(t, err)
	assert.True(t, q.Aggregates())

	assert.Equal(t, map[string]any{
		"properties": map[string]any{
			"nested": map[string]any{"path": "properties"},
			"aggs": map[string]any{
				"properties": map[string]any{
					"terms": map[string]any{"field": "properties.name", "size": float64(100)},
					"aggs": map[string]any{
						"value": map[string]any{"terms": map[string]any{"field": "properties.value", "size": float64(100)}},
					},
				},
			},
		},
	}, body(t, q)["aggs"])
}

func TestOrderBy_MultiKeyInCallOrder(t *testing.T) {
	q, err := NewBuilder("products").OrderBy("price", Desc).OrderBy("rating", Asc).Build()
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"price": "desc"},
		map[string]any{"rating": "asc"},
	}, body(t, q)["sort"])

	_, err = NewBuilder("products").OrderBy("price", "sideways").Build()
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestBuild_FreezesBuilder(t *testing.T) {
	b := NewBuilder("products").OnSale()
	q, err := b.Build()
	require.NoError(t, err)

	b.Keywords("late")
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrBuilderFrozen)
	assert.Empty(t, q.Bool.Must, "built query must not see later calls")
}

func TestBuild_FirstErrorWins(t *testing.T) {
	_, err := NewBuilder("products").Paginate(10, -1).OrderBy("", Asc).Build()
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "page -1")
}

func TestEmptyQueryHasEmptyLists(t *testing.T) {
	q, err := NewBuilder("products").Build()
	require.NoError(t, err)
	b := body(t, q)
	assert.NotContains(t, b, "from")
	assert.NotContains(t, b, "sort")
	assert.NotContains(t, b, "aggs")
	boolQ := b["query"].(map[string]any)["bool"].(map[string]any)
	assert.Equal(t, []any{}, boolQ["filter"])
	assert.Equal(t, []any{}, boolQ["must"])
}
