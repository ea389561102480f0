package search

import (
	"encoding/json"
)

// Clause is one entry of a bool query's filter or must list.
type Clause interface {
	json.Marshaler
	clause()
}

// Term is an exact-match clause: {"term": {field: value}}.
type Term struct {
	Field string
	Value any // bool, integer or string
}

func (Term) clause() {}

func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]any{"term": {t.Field: t.Value}})
}

// Prefix matches values starting with Value: {"prefix": {field: value}}.
type Prefix struct {
	Field string
	Value string
}

func (Prefix) clause() {}

func (p Prefix) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]string{"prefix": {p.Field: p.Value}})
}

// MultiMatch runs one full-text query over several (optionally boosted) fields.
type MultiMatch struct {
	Query  string
	Fields []string
}

func (MultiMatch) clause() {}

func (m MultiMatch) MarshalJSON() ([]byte, error) {
	type body struct {
		Query  string   `json:"query"`
		Fields []string `json:"fields"`
	}
	return json.Marshal(map[string]body{"multi_match": {Query: m.Query, Fields: m.Fields}})
}

// Nested applies Query to each object of the nested collection at Path.
type Nested struct {
	Path  string
	Query Clause
}

func (Nested) clause() {}

func (n Nested) MarshalJSON() ([]byte, error) {
	type body struct {
		Path  string `json:"path"`
		Query Clause `json:"query"`
	}
	return json.Marshal(map[string]body{"nested": {Path: n.Path, Query: n.Query}})
}

// Aggregation is a bucket aggregation, optionally with sub-aggregations.
type Aggregation interface {
	json.Marshaler
	aggregation()
}

// NestedAgg steps into the nested collection at Path.
type NestedAgg struct {
	Path string
	Aggs map[string]Aggregation
}

func (NestedAgg) aggregation() {}

func (a NestedAgg) MarshalJSON() ([]byte, error) {
	type nested struct {
		Path string `json:"path"`
	}
	type body struct {
		Nested nested                 `json:"nested"`
		Aggs   map[string]Aggregation `json:"aggs,omitempty"`
	}
	return json.Marshal(body{Nested: nested{Path: a.Path}, Aggs: a.Aggs})
}

// TermsAgg buckets documents by the distinct values of Field.
type TermsAgg struct {
	Field string
	Size  int // zero leaves the backend default
	Aggs  map[string]Aggregation
}

func (TermsAgg) aggregation() {}

func (a TermsAgg) MarshalJSON() ([]byte, error) {
	type terms struct {
		Field string `json:"field"`
		Size  int    `json:"size,omitempty"`
	}
	type body struct {
		Terms terms                  `json:"terms"`
		Aggs  map[string]Aggregation `json:"aggs,omitempty"`
	}
	return json.Marshal(body{Terms: terms{Field: a.Field, Size: a.Size}, Aggs: a.Aggs})
}

// Direction of a sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField is one key of a multi-key sort: {field: direction}.
type SortField struct {
	Field     string
	Direction Direction
}

func (s SortField) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Direction{s.Field: s.Direction})
}

// BoolQuery holds the conjunctive filter and must lists.
type BoolQuery struct {
	Filter []Clause
	Must   []Clause
}

// Query is a finished search request for one index.
type Query struct {
	Index string
	From  int
	Size  int // zero means the backend default page
	Bool  BoolQuery
	Sort  []SortField
	Aggs  map[string]Aggregation

	// pinned holds property names fixed by a property filter.
	pinned []string
}

// Pinned returns the property names the query already filters on.
func (q *Query) Pinned() []string {
	return append([]string(nil), q.pinned...)
}

// Aggregates reports whether the query asked for property facets.
func (q *Query) Aggregates() bool {
	_, ok := q.Aggs[aggProperties]
	return ok
}

// MarshalJSON renders the request body. The index is not part of the body.
func (q *Query) MarshalJSON() ([]byte, error) {
	type boolBody struct {
		Filter []Clause `json:"filter"`
		Must   []Clause `json:"must"`
	}
	type queryBody struct {
		Bool boolBody `json:"bool"`
	}
	type body struct {
		From  *int                   `json:"from,omitempty"`
		Size  *int                   `json:"size,omitempty"`
		Query queryBody              `json:"query"`
		Sort  []SortField            `json:"sort,omitempty"`
		Aggs  map[string]Aggregation `json:"aggs,omitempty"`
	}
	b := body{
		Query: queryBody{Bool: boolBody{
			Filter: nonNil(q.Bool.Filter),
			Must:   nonNil(q.Bool.Must),
		}},
		Sort: q.Sort,
		Aggs: q.Aggs,
	}
	if q.Size > 0 {
		from, size := q.From, q.Size
		b.From, b.Size = &from, &size
	}
	return json.Marshal(b)
}

func nonNil(cs []Clause) []Clause {
	if cs == nil {
		return []Clause{}
	}
	return cs
}

func (q *Query) clone() *Query {
	c := *q
	c.Bool.Filter = append([]Clause(nil), q.Bool.Filter...)
	c.Bool.Must = append([]Clause(nil), q.Bool.Must...)
	c.Sort = append([]SortField(nil), q.Sort...)
	c.pinned = append([]string(nil), q.pinned...)
	if q.Aggs != nil {
		c.Aggs = make(map[string]Aggregation, len(q.Aggs))
		for k, v := range q.Aggs {
			c.Aggs[k] = v
		}
	}
	return &c
}
