package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parishworks/sexton/pkg/routes"
)

func echo(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/pages",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/", Handler: echo("list")},
			{Method: "GET", Pattern: "/{id}", Handler: echo("find")},
			{Method: "POST", Pattern: "/search", Handler: echo("search")},
		},
	})

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/pages/", "list"},
		{"GET", "/pages/abc", "find"},
		{"POST", "/pages/search", "search"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s %s status = %d, want 200", tt.method, tt.path, rec.Code)
			continue
		}
		if rec.Body.String() != tt.want {
			t.Errorf("%s %s body = %q, want %q", tt.method, tt.path, rec.Body.String(), tt.want)
		}
	}
}

func TestRegisterNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/conversions",
		Children: []routes.Group{
			{
				Prefix: "/pages",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: echo("page")},
				},
			},
			{
				Prefix: "/posts",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: echo("post")},
				},
			},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/conversions/posts/abc", nil))

	if rec.Body.String() != "post" {
		t.Errorf("body = %q, want child prefix composed under parent", rec.Body.String())
	}
}

func TestRegisterMethodMismatch(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/jobs", Handler: echo("created")},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/jobs", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405 for wrong method", rec.Code)
	}
}
