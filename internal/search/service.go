package search

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/imrishuroy/go-storefront/internal/models"
)

const (
	DefaultPerPage = 16
	MaxPerPage     = 100
)

var (
	orderPattern  = regexp.MustCompile(`^(.+)_(asc|desc)$`)
	sortableField = map[string]bool{"price": true, "sold_count": true, "rating": true}
)

// Backend executes a built query.
type Backend interface {
	Search(ctx context.Context, q *Query) (*Result, error)
}

// ProductLoader fetches products by id in no particular order.
type ProductLoader interface {
	ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

type CategoryReader interface {
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
}

// Params are the raw listing parameters.
type Params struct {
	Page       int    // 1-based, 0 means first page
	PerPage    int    // 0 means DefaultPerPage
	Order      string // e.g. "price_desc"; anything unrecognized is ignored
	CategoryID int64
	Search     string // whitespace separated keywords
	Filters    string // "name:value|name:value"
}

// PropertyFilter is one applied name:value pair.
type PropertyFilter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Page is one page of listed products.
type Page struct {
	Products        []models.Product `json:"products"`
	Total           int64            `json:"total"`
	Page            int              `json:"page"`
	PerPage         int              `json:"per_page"`
	Category        *models.Category `json:"category,omitempty"`
	Facets          []Facet          `json:"facets"`
	PropertyFilters []PropertyFilter `json:"property_filters"`
}

type Service struct {
	index      string
	backend    Backend
	products   ProductLoader
	categories CategoryReader
}

func NewService(index string, backend Backend, products ProductLoader, categories CategoryReader) *Service {
	return &Service{index: index, backend: backend, products: products, categories: categories}
}

// Search lists on-sale products matching p.
func (s *Service) Search(ctx context.Context, p Params) (*Page, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PerPage == 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	b := NewBuilder(s.index).Paginate(p.PerPage, p.Page).OnSale()

	if field, dir, ok := parseOrder(p.Order); ok {
		b.OrderBy(field, dir)
	}

	var category *models.Category
	if p.CategoryID != 0 {
		c, err := s.categories.GetCategory(ctx, p.CategoryID)
		if err != nil {
			return nil, err
		}
		category = c
		b.Category(*c)
	}

	keywords := strings.Fields(p.Search)
	b.Keywords(keywords...)

	if len(keywords) > 0 || category != nil {
		b.AggregateProperties()
	}

	filters := parseFilters(p.Filters)
	for _, f := range filters {
		b.PropertyFilter(f.Name, f.Value)
	}

	q, err := b.Build()
	if err != nil {
		return nil, err
	}

	res, err := s.backend.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(res.IDs))
	for _, raw := range res.IDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("search hit id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	products = OrderByIDs(res.IDs, products, func(p models.Product) string {
		return strconv.FormatInt(p.ID, 10)
	})

	facets := res.Facets
	if facets == nil {
		facets = []Facet{}
	}
	return &Page{
		Products:        products,
		Total:           res.Total,
		Page:            p.Page,
		PerPage:         p.PerPage,
		Category:        category,
		Facets:          facets,
		PropertyFilters: filters,
	}, nil
}

func parseOrder(order string) (string, Direction, bool) {
	m := orderPattern.FindStringSubmatch(order)
	if m == nil || !sortableField[m[1]] {
		return "", "", false
	}
	return m[1], Direction(m[2]), true
}

// parseFilters splits "name:value|name:value", skipping malformed pairs.
func parseFilters(raw string) []PropertyFilter {
	out := []PropertyFilter{}
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, "|") {
		name, value, ok := strings.Cut(pair, ":")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			continue
		}
		out = append(out, PropertyFilter{Name: name, Value: value})
	}
	return out
}
