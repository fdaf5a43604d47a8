package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/brief/pkg/query"
)

// SortFields decodes from either "filename,-started_at" or a JSON array
// of query.SortField objects, and encodes to the string form.
type SortFields []query.SortField

// UnmarshalJSON implements json.Unmarshaler.
func (s *SortFields) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = query.ParseSortFields(str)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s SortFields) MarshalJSON() ([]byte, error) {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.String()
	}
	return json.Marshal(strings.Join(parts, ","))
}

// PageRequest selects one page of a listing.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize makes Page 1-based and bounds PageSize by cfg.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	r.PageSize = cfg.Clamp(r.PageSize)
}

// Offset is the number of rows preceding the page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, page_size, search, and sort from values.
// Unparseable numbers fall back to the normalized defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{
		Sort: query.ParseSortFields(values.Get("sort")),
	}
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))

	if s := strings.TrimSpace(values.Get("search")); s != "" {
		req.Search = &s
	}

	req.Normalize(cfg)
	return req
}
