// Package aggregation computes set-level statistics over entity
// collections: domain grouping, state histograms and attribute usage
// summaries. Like the projection engine it is pure; every function
// takes already-fetched records and returns fresh values.
package aggregation

import (
	"encoding/json"
	"fmt"
	"sort"

	"hass-mcp-server/pkg/types"
)

// StateUnknown is the bucket for records whose state field is empty.
const StateUnknown = "unknown"

// DomainGroups holds entities partitioned by domain. Domains preserves
// first-seen order so render output is stable for a given input.
type DomainGroups struct {
	Domains []string
	ByName  map[string][]*types.EntityRecord
}

// GroupByDomain partitions entities by their domain prefix. Entities
// within a group keep their input order; no sorting happens here.
func GroupByDomain(entities []*types.EntityRecord) *DomainGroups {
	g := &DomainGroups{
		ByName: make(map[string][]*types.EntityRecord),
	}
	for _, e := range entities {
		domain := e.Domain()
		if _, seen := g.ByName[domain]; !seen {
			g.Domains = append(g.Domains, domain)
		}
		g.ByName[domain] = append(g.ByName[domain], e)
	}
	return g
}

// BuildStateHistogram counts entities per state and records up to
// exampleLimit examples for each state, taken strictly in input order.
// A record with an empty state is counted under StateUnknown.
func BuildStateHistogram(entities []*types.EntityRecord, exampleLimit int) *types.StateHistogram {
	h := &types.StateHistogram{
		Total:    len(entities),
		Counts:   make(map[string]int),
		Examples: make(map[string][]types.EntityExample),
	}
	for _, e := range entities {
		state := e.State
		if state == "" {
			state = StateUnknown
		}
		if _, seen := h.Counts[state]; !seen {
			h.Order = append(h.Order, state)
		}
		h.Counts[state]++
		if len(h.Examples[state]) < exampleLimit {
			ex := types.EntityExample{EntityID: e.EntityID}
			if name, ok := e.FriendlyName(); ok {
				ex.FriendlyName = name
			}
			h.Examples[state] = append(h.Examples[state], ex)
		}
	}
	return h
}

// attributeStats tracks the distinct serialized values of one attribute
// in first-seen order.
type attributeStats struct {
	name   string
	seen   map[string]struct{}
	values []string
}

// AttributeSummary holds per-attribute distinct-value statistics for an
// entity set, with attribute names kept in first-seen order so ranking
// ties break deterministically.
type AttributeSummary struct {
	order []string
	stats map[string]*attributeStats
}

// SummarizeAttributes walks every attribute of every entity and counts
// distinct values per attribute name. Values are canonicalized through
// JSON serialization, which renders Go maps with sorted keys, so
// structurally equal values collapse to one entry regardless of their
// in-memory representation. Unserializable values fall back to their
// fmt representation.
func SummarizeAttributes(entities []*types.EntityRecord) *AttributeSummary {
	s := &AttributeSummary{
		stats: make(map[string]*attributeStats),
	}
	for _, e := range entities {
		for name, value := range e.Attributes {
			st, ok := s.stats[name]
			if !ok {
				st = &attributeStats{name: name, seen: make(map[string]struct{})}
				s.stats[name] = st
				s.order = append(s.order, name)
			}
			canon := canonicalize(value)
			if _, dup := st.seen[canon]; dup {
				continue
			}
			st.seen[canon] = struct{}{}
			st.values = append(st.values, canon)
		}
	}
	return s
}

func canonicalize(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Top returns the n attributes with the most distinct values, in
// descending distinct-count order. Ties keep first-seen order. Each
// entry carries its distinct values in first-seen order.
func (s *AttributeSummary) Top(n int) []types.AttributeCount {
	ranked := make([]*attributeStats, 0, len(s.order))
	for _, name := range s.order {
		ranked = append(ranked, s.stats[name])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(ranked[i].values) > len(ranked[j].values)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	out := make([]types.AttributeCount, 0, len(ranked))
	for _, st := range ranked {
		out = append(out, types.AttributeCount{
			Name:   st.name,
			Count:  len(st.values),
			Values: st.values,
		})
	}
	return out
}

// Len returns the number of distinct attribute names observed.
func (s *AttributeSummary) Len() int {
	return len(s.order)
}

// BuildReport assembles the full aggregation view of an entity set:
// total, state histogram with up to exampleLimit examples per state,
// and the topAttrs attributes with the most distinct values.
func BuildReport(entities []*types.EntityRecord, exampleLimit, topAttrs int) *types.AggregationReport {
	return &types.AggregationReport{
		Total:         len(entities),
		Histogram:     BuildStateHistogram(entities, exampleLimit),
		TopAttributes: SummarizeAttributes(entities).Top(topAttrs),
	}
}
