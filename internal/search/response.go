package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Facet is a property name and the values still available under it.
type Facet struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Result is the parsed backend response.
type Result struct {
	IDs    []string // hit ids in ranking order
	Total  int64
	Facets []Facet
}

type total int64

// UnmarshalJSON accepts both {"value": N, ...} and a bare N.
func (t *total) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*t = total(obj.Value)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = total(n)
	return nil
}

type bucket struct {
	Key   string `json:"key"`
	Value struct {
		Buckets []struct {
			Key string `json:"key"`
		} `json:"buckets"`
	} `json:"value"`
}

type rawResponse struct {
	Hits struct {
		Total total `json:"total"`
		Hits  []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations *struct {
		Properties struct {
			Properties struct {
				Buckets []bucket `json:"buckets"`
			} `json:"properties"`
		} `json:"properties"`
	} `json:"aggregations"`
}

// ParseResponse decodes a search response for q.
func ParseResponse(q *Query, r io.Reader) (*Result, error) {
	var raw rawResponse
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	res := &Result{
		IDs:   make([]string, 0, len(raw.Hits.Hits)),
		Total: int64(raw.Hits.Total),
	}
	for _, h := range raw.Hits.Hits {
		res.IDs = append(res.IDs, h.ID)
	}
	if q.Aggregates() && raw.Aggregations != nil {
		res.Facets = buildFacets(raw.Aggregations.Properties.Properties.Buckets, q.pinned)
	}
	return res, nil
}

// buildFacets keeps the backend's name order. A facet is dropped if its name
// is already filtered on or it has fewer than two distinct values.
func buildFacets(buckets []bucket, pinned []string) []Facet {
	skip := make(map[string]bool, len(pinned))
	for _, name := range pinned {
		skip[name] = true
	}

	facets := make([]Facet, 0, len(buckets))
	for _, b := range buckets {
		if skip[b.Key] {
			continue
		}
		seen := make(map[string]bool, len(b.Value.Buckets))
		values := make([]string, 0, len(b.Value.Buckets))
		for _, v := range b.Value.Buckets {
			if !seen[v.Key] {
				seen[v.Key] = true
				values = append(values, v.Key)
			}
		}
		if len(values) <= 1 {
			continue
		}
		sort.Strings(values)
		facets = append(facets, Facet{Key: b.Key, Values: values})
	}
	return facets
}

// OrderByIDs returns the items whose key appears in ids, in the order of ids.
// Items without a matching id are dropped.
func OrderByIDs[T any](ids []string, items []T, key func(T) string) []T {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; !dup {
			pos[id] = i
		}
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := pos[key(it)]; ok {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return pos[key(out[i])] < pos[key(out[j])]
	})
	return out
}
