// Package query builds parameterized PostgreSQL statements from a projection
// of view field names onto table columns.
package query

import "strings"

// ProjectionMap maps view field names to alias-qualified columns of one table.
// Only mapped fields can be filtered or sorted on.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	ordered []string
}

// NewProjectionMap creates a ProjectionMap for schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps view to column. Columns are selected in projection order.
func (p *ProjectionMap) Project(column, view string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[view] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From returns the aliased table reference used in FROM clauses.
func (p *ProjectionMap) From() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Lookup returns the qualified column for view.
func (p *ProjectionMap) Lookup(view string) (string, bool) {
	col, ok := p.columns[view]
	return col, ok
}

// Column returns the qualified column for view. It panics for an unmapped
// field; filter fields are fixed in code, so this is a programming error.
func (p *ProjectionMap) Column(view string) string {
	col, ok := p.columns[view]
	if !ok {
		panic("query: unmapped field " + view + " on " + p.table)
	}
	return col
}

// Columns returns the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}
