package module_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/brief/pkg/module"
)

func echoPath(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s:%s", name, r.URL.Path)
	})
}

func body(t *testing.T, h http.Handler, path string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	b, _ := io.ReadAll(rec.Body)
	return string(b)
}

func TestNewPrefixValidation(t *testing.T) {
	for _, prefix := range []string{"", "/", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, http.NotFoundHandler())
		})
	}

	if got := module.New("/api", http.NotFoundHandler()).Prefix(); got != "/api" {
		t.Errorf("Prefix() = %q", got)
	}
}

func TestServeStripsPrefix(t *testing.T) {
	m := module.New("/api", echoPath("api"))

	tests := map[string]string{
		"/api":                 "api:/",
		"/api/sessions":        "api:/sessions",
		"/api/sessions/x/runs": "api:/sessions/x/runs",
	}
	for path, want := range tests {
		rec := httptest.NewRecorder()
		m.Serve(rec, httptest.NewRequest("GET", path, nil))
		if got := rec.Body.String(); got != want {
			t.Errorf("Serve(%s) = %q, want %q", path, got, want)
		}
	}
}

func TestServeLeavesCallerRequestIntact(t *testing.T) {
	m := module.New("/api", echoPath("api"))
	req := httptest.NewRequest("GET", "/api/runs", nil)
	m.Serve(httptest.NewRecorder(), req)

	if req.URL.Path != "/api/runs" {
		t.Errorf("caller request path mutated to %q", req.URL.Path)
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", echoPath("api"))

	var seen []string
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/runs", nil))
	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/graphs", nil))

	if !slices.Equal(seen, []string{"/runs", "/graphs"}) {
		t.Errorf("middleware saw %v", seen)
	}
}

func TestRouter(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPath("api")))
	router.Mount(module.New("/admin", echoPath("admin")))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "native")
	})

	tests := []struct {
		path string
		want string
	}{
		{"/api/runs", "api:/runs"},
		{"/api/runs/", "api:/runs"},
		{"/api", "api:/"},
		{"/admin/x", "admin:/x"},
		{"/healthz", "native"},
		{"/apis/runs", "404 page not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := body(t, router, tt.path); got != tt.want {
				t.Errorf("GET %s = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	if got := router.Prefixes(); !slices.Equal(got, []string{"/admin", "/api"}) {
		t.Errorf("Prefixes() = %v", got)
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPath("a")))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate mount")
		}
	}()
	router.Mount(module.New("/api", echoPath("b")))
}
