package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

// ErrBuilderFrozen is recorded when a builder is changed after Build.
var ErrBuilderFrozen = errors.New("search: builder already built")

// Field names of the products index.
const (
	fieldOnSale       = "on_sale"
	fieldCategoryID   = "category_id"
	fieldCategoryPath = "category_path"
	pathProperties    = "properties"
	fieldPropName     = "properties.name"
	fieldPropValue    = "properties.value"
	fieldPropSearch   = "properties.search_value"

	aggProperties = "properties"
	aggValue      = "value"
)

const (
	// MaxResultWindow is the deepest hit (from + size) the backend serves.
	MaxResultWindow = 10000
	// facetBuckets bounds both the property name and value buckets.
	facetBuckets = 100
)

// keywordFields are matched by every keyword; the suffix is the boost.
var keywordFields = []string{
	"title^3",
	"long_title^2",
	"category^2",
	"description",
	"skus_title",
	"skus_description",
	"properties_value",
}

// Builder accumulates a product query. The first invalid call is remembered
// and returned by Build; later calls are ignored.
type Builder struct {
	q      Query
	err    error
	frozen bool
}

// NewBuilder starts an empty query against index.
func NewBuilder(index string) *Builder {
	return &Builder{q: Query{Index: index}}
}

func (b *Builder) apply(fn func(q *Query) error) *Builder {
	if b.frozen {
		if b.err == nil {
			b.err = ErrBuilderFrozen
		}
		return b
	}
	if b.err != nil {
		return b
	}
	b.err = fn(&b.q)
	return b
}

// Paginate selects page (1-based) of size results.
func (b *Builder) Paginate(size, page int) *Builder {
	return b.apply(func(q *Query) error {
		if page < 1 {
			return fmt.Errorf("page %d must be >= 1: %w", page, apperr.ErrInvalidArgument)
		}
		if size < 1 {
			return fmt.Errorf("page size %d must be >= 1: %w", size, apperr.ErrInvalidArgument)
		}
		if size > MaxResultWindow || page-1 > (MaxResultWindow-size)/size {
			return fmt.Errorf("page %d of size %d is past the %d result window: %w",
				page, size, MaxResultWindow, apperr.ErrInvalidArgument)
		}
		q.From = (page - 1) * size
		q.Size = size
		return nil
	})
}

// OnSale keeps only listed products.
func (b *Builder) OnSale() *Builder {
	return b.apply(func(q *Query) error {
		q.Bool.Filter = append(q.Bool.Filter, Term{Field: fieldOnSale, Value: true})
		return nil
	})
}

// Category restricts to c. A directory matches its whole subtree through the
// materialized path; a leaf matches only itself.
func (b *Builder) Category(c models.Category) *Builder {
	return b.apply(func(q *Query) error {
		if c.IsDirectory {
			q.Bool.Filter = append(q.Bool.Filter, Prefix{
				Field: fieldCategoryPath,
				Value: c.Path + strconv.FormatInt(c.ID, 10) + "-",
			})
			return nil
		}
		q.Bool.Filter = append(q.Bool.Filter, Term{Field: fieldCategoryID, Value: c.ID})
		return nil
	})
}

// Keywords adds one must clause per keyword, so every keyword has to match.
// Blank keywords are skipped.
func (b *Builder) Keywords(keywords ...string) *Builder {
	return b.apply(func(q *Query) error {
		for _, kw := range keywords {
			if strings.TrimSpace(kw) == "" {
				continue
			}
			q.Bool.Must = append(q.Bool.Must, MultiMatch{
				Query:  kw,
				Fields: append([]string(nil), keywordFields...),
			})
		}
		return nil
	})
}

// AggregateProperties requests property facets: names, then values per name.
func (b *Builder) AggregateProperties() *Builder {
	return b.apply(func(q *Query) error {
		if q.Aggs == nil {
			q.Aggs = map[string]Aggregation{}
		}
		q.Aggs[aggProperties] = NestedAgg{
			Path: pathProperties,
			Aggs: map[string]Aggregation{
				aggProperties: TermsAgg{
					Field: fieldPropName,
					Size:  facetBuckets,
					Aggs: map[string]Aggregation{
						aggValue: TermsAgg{Field: fieldPropValue, Size: facetBuckets},
					},
				},
			},
		}
		return nil
	})
}

// PropertyFilter requires a single property entry whose "name:value"
// signature equals the given pair.
func (b *Builder) PropertyFilter(name, value string) *Builder {
	return b.apply(func(q *Query) error {
		if name == "" || value == "" {
			return fmt.Errorf("property filter %q:%q: %w", name, value, apperr.ErrInvalidArgument)
		}
		q.Bool.Filter = append(q.Bool.Filter, Nested{
			Path:  pathProperties,
			Query: Term{Field: fieldPropSearch, Value: name + ":" + value},
		})
		q.pinned = append(q.pinned, name)
		return nil
	})
}

// OrderBy appends a sort key. Repeated calls sort by each key in call order.
func (b *Builder) OrderBy(field string, dir Direction) *Builder {
	return b.apply(func(q *Query) error {
		if field == "" {
			return fmt.Errorf("sort field is empty: %w", apperr.ErrInvalidArgument)
		}
		if dir != Asc && dir != Desc {
			return fmt.Errorf("sort direction %q: %w", dir, apperr.ErrInvalidArgument)
		}
		q.Sort = append(q.Sort, SortField{Field: field, Direction: dir})
		return nil
	})
}

// Build returns the finished query and freezes the builder.
func (b *Builder) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.frozen = true
	return b.q.clone(), nil
}
