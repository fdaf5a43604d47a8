package query

import "strings"

// SortField orders results by a view field. Descending reverses the order.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// String renders the field in the "-field" form accepted by ParseSortFields.
func (s SortField) String() string {
	if s.Descending {
		return "-" + s.Field
	}
	return s.Field
}

// ParseSortFields parses "filename,-started_at" style input.
// Blank entries are skipped; empty input yields nil.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}
