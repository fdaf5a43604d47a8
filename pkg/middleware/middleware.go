// Package middleware provides the HTTP middleware stack and the standard
// request logging, metrics observation, and CORS layers.
package middleware

import "net/http"

// Func wraps an http.Handler.
type Func func(http.Handler) http.Handler

// System is an ordered middleware stack. The first Func added is outermost.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack []Func

// New creates an empty System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw func(http.Handler) http.Handler) {
	*s = append(*s, mw)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	return Chain(*s...)(handler)
}

// Chain composes mws so that mws[0] sees the request first.
func Chain(mws ...Func) Func {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
