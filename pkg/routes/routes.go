// Package routes declares HTTP endpoints as nested groups and registers them
// on a ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds a method and a pattern relative to its group.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group is a set of routes and child groups sharing a path prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Walk calls fn with the full mux pattern of every route in g, parents first.
func (g Group) Walk(fn func(pattern string, r Route)) {
	g.walk("", fn)
}

func (g Group) walk(parent string, fn func(string, Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(r.Method+" "+prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}

// Patterns lists the full mux patterns of g.
func (g Group) Patterns() []string {
	var out []string
	g.Walk(func(p string, _ Route) { out = append(out, p) })
	return out
}

// Register adds every route of groups to mux. ServeMux panics on
// conflicting patterns, so conflicts surface at startup.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.Walk(func(p string, r Route) {
			mux.HandleFunc(p, r.Handler)
		})
	}
}
