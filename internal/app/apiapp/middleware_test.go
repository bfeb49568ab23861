package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antonvlk/emberline/internal/domain/enums"
	authsvc "github.com/antonvlk/emberline/internal/services/auth"
)

func TestRequireAdminAllowsAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reports", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		Role:   enums.RoleAdmin,
	}))
	rr := httptest.NewRecorder()

	RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reports", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 2,
		Role:   enums.RoleUser,
	}))
	rr := httptest.NewRecorder()

	RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for non-admin")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireAdminRejectsMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reports", nil)
	rr := httptest.NewRecorder()

	RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("header %q: got (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
