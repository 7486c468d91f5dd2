package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func named(name string) HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(name)) }
}

func TestExactAndWildcardRoutes(t *testing.T) {
	r := New()
	r.GET("/api/v1/runs", named("list"))
	r.POST("/api/v1/runs", named("create"))
	r.GET("/api/v1/runs/*", named("get"))

	cases := []struct {
		method, path, want string
		code               int
	}{
		{http.MethodGet, "/api/v1/runs", "list", http.StatusOK},
		{http.MethodPost, "/api/v1/runs", "create", http.StatusOK},
		{http.MethodGet, "/api/v1/runs/abc", "get", http.StatusOK},
		{http.MethodDelete, "/api/v1/runs", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/runs/", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := serve(r, tc.method, tc.path)
		if rec.Code != tc.code {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.code, rec.Code)
		}
		if tc.want != "" && rec.Body.String() != tc.want {
			t.Fatalf("%s %s: expected %q, got %q", tc.method, tc.path, tc.want, rec.Body.String())
		}
	}
}

func TestMountServesPrefix(t *testing.T) {
	r := New()
	r.Mount("/swagger/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("docs"))
	}))

	rec := serve(r, http.MethodGet, "/swagger/index.html")
	if rec.Code != http.StatusOK || rec.Body.String() != "docs" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestMatchWildcardRoute(t *testing.T) {
	if !matchWildcardRoute("/a/b/c", "/a/*/c") {
		t.Fatal("expected inner wildcard to match")
	}
	if matchWildcardRoute("/a/b/d", "/a/*/c") {
		t.Fatal("unexpected match")
	}
	if !matchWildcardRoute("/a/b/c/d", "/a/*") {
		t.Fatal("expected trailing wildcard to match remaining segments")
	}
}
