package resources

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hass-mcp-server/internal/aggregation"
	"hass-mcp-server/internal/errors"
	"hass-mcp-server/internal/projection"
	"hass-mcp-server/pkg/types"
)

const (
	previewPerDomain  = 5
	summaryExamples   = 3
	summaryTopAttrs   = 10
	summaryMaxValues  = 5
	complexValueLabel = "[complex value]"
)

var titleCaser = cases.Title(language.English)

// domainTitle renders a domain identifier as a heading, e.g.
// "binary_sensor" becomes "Binary Sensor".
func domainTitle(domain string) string {
	return titleCaser.String(strings.ReplaceAll(domain, "_", " "))
}

// formatScalar renders an attribute value inline. Maps and lists are
// collapsed to a placeholder; detailed views expand them separately.
func formatScalar(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return complexValueLabel
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

// formatExpanded renders an attribute value for the detailed view,
// using an indented JSON block for structured values.
func formatExpanded(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return fmt.Sprintf("\n```json\n%s\n```", data)
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

func entityLine(e *types.EntityRecord) string {
	if name, ok := e.FriendlyName(); ok && name != "" && name != e.EntityID {
		return fmt.Sprintf("- `%s` (%s): %s", e.EntityID, name, e.State)
	}
	return fmt.Sprintf("- `%s`: %s", e.EntityID, e.State)
}

// renderEntityLean renders the token-efficient entity view: identity,
// state, and the domain's important attributes in table order.
func renderEntityLean(e *types.EntityRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.EntityID)
	if name, ok := e.FriendlyName(); ok && name != "" && name != e.EntityID {
		fmt.Fprintf(&b, "**Name**: %s\n", name)
	}
	fmt.Fprintf(&b, "**State**: %s\n", e.State)
	fmt.Fprintf(&b, "**Domain**: %s\n", e.Domain())

	attrs := projection.LeanAttributeOrder(e)
	if len(attrs) > 0 {
		b.WriteString("\n## Key Attributes\n\n")
		for _, name := range attrs {
			fmt.Fprintf(&b, "- %s: %s\n", name, formatScalar(e.Attributes[name]))
		}
	}
	return b.String()
}

// renderEntityDetailed renders the full entity view with every
// attribute, sorted by name, plus timestamps and context.
func renderEntityDetailed(e *types.EntityRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (detailed)\n\n", e.EntityID)
	if name, ok := e.FriendlyName(); ok && name != "" && name != e.EntityID {
		fmt.Fprintf(&b, "**Name**: %s\n", name)
	}
	fmt.Fprintf(&b, "**State**: %s\n", e.State)
	fmt.Fprintf(&b, "**Domain**: %s\n", e.Domain())

	if len(e.Attributes) > 0 {
		b.WriteString("\n## Attributes\n\n")
		names := make([]string, 0, len(e.Attributes))
		for name := range e.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, formatExpanded(e.Attributes[name]))
		}
	}

	if e.LastChanged != "" || e.LastUpdated != "" {
		b.WriteString("\n## Timestamps\n\n")
		if e.LastChanged != "" {
			fmt.Fprintf(&b, "- last_changed: %s\n", e.LastChanged)
		}
		if e.LastUpdated != "" {
			fmt.Fprintf(&b, "- last_updated: %s\n", e.LastUpdated)
		}
	}

	if len(e.Context) > 0 {
		b.WriteString("\n## Context\n\n")
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, formatScalar(e.Context[k]))
		}
	}
	return b.String()
}

// renderAllEntities renders the bounded overview of every entity,
// domains in alphabetical order, each previewing its first entities in
// entity_id order with a pointer to the full domain listing.
func renderAllEntities(entities []*types.EntityRecord) string {
	if len(entities) == 0 {
		return "# Home Assistant Entities\n\nNo entities found.\n"
	}

	groups := aggregation.GroupByDomain(entities)
	domains := append([]string(nil), groups.Domains...)
	sort.Strings(domains)

	var b strings.Builder
	b.WriteString("# Home Assistant Entities\n\n")
	fmt.Fprintf(&b, "**Total**: %d entities across %d domains\n", len(entities), len(domains))

	for _, domain := range domains {
		members := groups.ByName[domain]
		fmt.Fprintf(&b, "\n## %s (%d entities)\n\n", domainTitle(domain), len(members))

		shown := append([]*types.EntityRecord(nil), members...)
		sort.Slice(shown, func(i, j int) bool { return shown[i].EntityID < shown[j].EntityID })
		if len(shown) > previewPerDomain {
			shown = shown[:previewPerDomain]
		}
		for _, e := range shown {
			b.WriteString(entityLine(e))
			b.WriteByte('\n')
		}
		if rest := len(members) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "...and %d more. See hass://entities/domain/%s\n", rest, domain)
		}
	}
	return b.String()
}

// renderDomainListing renders every entity of one domain with its
// important attributes, plus a pointer to the domain summary.
func renderDomainListing(domain string, entities []*types.EntityRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Entities (%d)\n\n", domainTitle(domain), len(entities))
	for _, e := range entities {
		b.WriteString(entityLine(e))
		b.WriteByte('\n')
		for _, name := range projection.LeanAttributeOrder(e) {
			fmt.Fprintf(&b, "  - %s: %s\n", name, formatScalar(e.Attributes[name]))
		}
	}
	fmt.Fprintf(&b, "\nFor a summary: hass://entities/domain/%s/summary\n", domain)
	return b.String()
}

// renderDomainSummary renders the aggregated view of one domain: state
// distribution with percentages and examples, then the attributes with
// the most distinct values.
func renderDomainSummary(domain string, report *types.AggregationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Summary\n\n", domainTitle(domain))
	fmt.Fprintf(&b, "**Total entities**: %d\n", report.Total)

	b.WriteString("\n## State Distribution\n")
	for _, state := range report.Histogram.Order {
		count := report.Histogram.Counts[state]
		pct := float64(count) * 100 / float64(report.Histogram.Total)
		fmt.Fprintf(&b, "\n### %s: %d (%.1f%%)\n", state, count, pct)
		if examples := report.Histogram.Examples[state]; len(examples) > 0 {
			parts := make([]string, 0, len(examples))
			for _, ex := range examples {
				if ex.FriendlyName != "" {
					parts = append(parts, fmt.Sprintf("%s (%s)", ex.EntityID, ex.FriendlyName))
				} else {
					parts = append(parts, ex.EntityID)
				}
			}
			fmt.Fprintf(&b, "Examples: %s\n", strings.Join(parts, ", "))
		}
	}

	if len(report.TopAttributes) > 0 {
		b.WriteString("\n## Common Attributes\n\n")
		for _, attr := range report.TopAttributes {
			if attr.Count <= summaryMaxValues {
				fmt.Fprintf(&b, "- %s: %d distinct values (%s)\n", attr.Name, attr.Count, strings.Join(attr.Values, ", "))
			} else {
				fmt.Fprintf(&b, "- %s: %d distinct values\n", attr.Name, attr.Count)
			}
		}
	}
	return b.String()
}

// renderSearch renders search matches grouped by domain. An empty
// match set is a normal document, not an error.
func renderSearch(query string, limit int, matches []*types.EntityRecord) string {
	if len(matches) == 0 {
		return fmt.Sprintf("# Search Results for '%s'\n\nNo entities matched.\n", query)
	}

	groups := aggregation.GroupByDomain(matches)

	var b strings.Builder
	fmt.Fprintf(&b, "# Search Results for '%s'\n\n", query)
	fmt.Fprintf(&b, "**Found**: %d matching entities (limit %d)\n", len(matches), limit)
	for _, domain := range groups.Domains {
		fmt.Fprintf(&b, "\n## %s\n\n", domainTitle(domain))
		for _, e := range groups.ByName[domain] {
			b.WriteString(entityLine(e))
			fmt.Fprintf(&b, " [details](hass://entities/%s)\n", e.EntityID)
		}
	}
	return b.String()
}

// renderError renders a resolution failure as a readable document.
func renderError(stdErr *errors.StandardError) string {
	var b strings.Builder
	b.WriteString("# Error\n\n")
	fmt.Fprintf(&b, "**Code**: %s\n", stdErr.ErrorInfo.Code)
	fmt.Fprintf(&b, "**Message**: %s\n", stdErr.ErrorInfo.Message)
	return b.String()
}
