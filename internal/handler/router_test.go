package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erickai/companion/backend/internal/model/chat"
	"github.com/erickai/companion/backend/internal/model/persona"
	chatService "github.com/erickai/companion/backend/internal/service/chat"
	"github.com/erickai/companion/backend/internal/service/conversation"
)

type okRelay struct{}

func (okRelay) Complete(context.Context, []chat.Turn) (string, error) { return "ok", nil }

func newTestRouter() http.Handler {
	return NewRouter(Dependencies{
		Chat:           chatService.NewService(okRelay{}, conversation.Config{}, chatService.Config{}),
		Persona:        persona.Erick(),
		AllowedOrigins: []string{"*"},
	})
}

func TestRouterMountsRoutes(t *testing.T) {
	r := newTestRouter()
	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodPost, "/api/session", http.StatusCreated},
		{http.MethodGet, "/api/helplines", http.StatusOK},
		{http.MethodGet, "/api/persona", http.StatusOK},
		{http.MethodGet, "/api/session/missing", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, resp.Code)
		}
	}
}

func TestOriginChecker(t *testing.T) {
	if originChecker([]string{"*"}) != nil {
		t.Fatal("wildcard should accept every origin")
	}
	check := originChecker([]string{"https://erick.app"})
	req := httptest.NewRequest(http.MethodGet, "/api/ws/x", nil)
	req.Header.Set("Origin", "https://erick.app")
	if !check(req) {
		t.Fatal("expected allowed origin")
	}
	req.Header.Set("Origin", "https://evil.example")
	if check(req) {
		t.Fatal("expected rejected origin")
	}
}
