package query

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Builder accumulates WHERE conditions and ordering for a projection.
// Placeholders are numbered as arguments are bound, so conditions may be
// added in any order.
type Builder struct {
	projection *ProjectionMap
	conditions []string
	args       []any
	order      []SortField
	fallback   []SortField
}

// NewBuilder creates a Builder ordered by fallback until OrderBy selects
// at least one mapped field.
func NewBuilder(projection *ProjectionMap, fallback ...SortField) *Builder {
	return &Builder{
		projection: projection,
		fallback:   fallback,
	}
}

// WhereEquals matches field exactly. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.conditions = append(b.conditions, b.projection.Column(field)+" = "+b.bind(value))
	return b
}

// WhereContains matches field case-insensitively as a substring.
// Nil and empty values are ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	b.conditions = append(b.conditions, b.ilike(field, *value))
	return b
}

// WhereSearch matches search as a substring of any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	for i, field := range fields {
		clauses[i] = b.ilike(field, *search)
	}
	b.conditions = append(b.conditions, "("+strings.Join(clauses, " OR ")+")")
	return b
}

// WhereRange bounds field to [from, to). Either bound may be nil.
func (b *Builder) WhereRange(field string, from, to *time.Time) *Builder {
	if from == nil && to == nil {
		return b
	}
	col := b.projection.Column(field)
	if from != nil {
		b.conditions = append(b.conditions, col+" >= "+b.bind(*from))
	}
	if to != nil {
		b.conditions = append(b.conditions, col+" < "+b.bind(*to))
	}
	return b
}

// OrderBy replaces the ordering. Fields the projection does not map are dropped.
func (b *Builder) OrderBy(fields []SortField) *Builder {
	b.order = b.order[:0]
	for _, f := range fields {
		if _, ok := b.projection.Lookup(f.Field); ok {
			b.order = append(b.order, f)
		}
	}
	return b
}

// BuildCount returns a COUNT(*) statement over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	return "SELECT COUNT(*) FROM " + b.projection.From() + b.where(), b.args
}

// BuildPage returns the page'th page (1-based) of size rows.
func (b *Builder) BuildPage(page, size int) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.From(),
		b.where(),
		b.orderBy(),
		size,
		(page-1)*size,
	)
	return sql, b.args
}

// BuildSingle returns a statement selecting the row whose field equals id.
// Builder conditions do not apply.
func (b *Builder) BuildSingle(field string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(field),
	)
	return sql, []any{id}
}

func (b *Builder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *Builder) where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

func (b *Builder) orderBy() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.fallback
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		parts[i] = b.projection.Column(f.Field) + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ilike matches value literally as a substring of field. Wildcards in value
// are escaped.
func (b *Builder) ilike(field, value string) string {
	return b.projection.Column(field) + " ILIKE " + b.bind("%"+likeEscaper.Replace(value)+"%") + ` ESCAPE '\'`
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
