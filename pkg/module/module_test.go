package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parishworks/sexton/pkg/module"
)

func pathEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
}

func TestNewValidatesPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"missing leading slash", "api"},
		{"multi-level", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) should panic", tt.prefix)
				}
			}()
			module.New(tt.prefix, pathEcho())
		})
	}
}

func TestModuleServeStripsPrefix(t *testing.T) {
	m := module.New("/api", pathEcho())

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api/jobs/abc", nil))

	if rec.Body.String() != "/jobs/abc" {
		t.Errorf("inner path = %q, want prefix stripped", rec.Body.String())
	}
}

func TestModuleServeBarePrefix(t *testing.T) {
	m := module.New("/api", pathEcho())

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api", nil))

	if rec.Body.String() != "/" {
		t.Errorf("inner path = %q, want / for bare prefix", rec.Body.String())
	}
}

func TestModuleMiddlewareOrder(t *testing.T) {
	m := module.New("/api", pathEcho())

	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("first|"))
			next.ServeHTTP(w, r)
		})
	})
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("second|"))
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api/jobs", nil))

	if rec.Body.String() != "first|second|/jobs" {
		t.Errorf("body = %q, want middleware applied in registration order", rec.Body.String())
	}
}

func TestRouterDispatchesToModule(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", pathEcho()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/abc", nil))

	if rec.Body.String() != "/jobs/abc" {
		t.Errorf("body = %q, want module dispatch", rec.Body.String())
	}
}

func TestRouterNativeFallback(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", pathEcho()))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want native mux fallback", rec.Body.String())
	}
}

func TestRouterTrimsTrailingSlash(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", pathEcho()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/", nil))

	if rec.Body.String() != "/jobs" {
		t.Errorf("body = %q, want trailing slash trimmed before dispatch", rec.Body.String())
	}
}
