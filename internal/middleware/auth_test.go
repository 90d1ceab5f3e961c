package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"rideshare/internal/identity"
)

type stubParser struct {
	email string
	err   error
	calls int
}

func (s *stubParser) Parse(token string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.email, nil
}

func newAuthRouter(parser TokenParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(parser))
	router.GET("/me", func(c *gin.Context) {
		user, ok := identity.UserFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "stored": CurrentUser(c)})
	})
	return router
}

func TestAuthMiddleware_StoresUser(t *testing.T) {
	router := newAuthRouter(&stubParser{email: " Alice@Example.com "})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := `{"stored":"alice@example.com","user":"alice@example.com"}`
	if w.Body.String() != want {
		t.Errorf("expected %s, got %s", want, w.Body.String())
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Basic abc", nil},
		{"empty token", "Bearer   ", nil},
		{"invalid token", "Bearer abc", errors.New("bad signature")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &stubParser{email: "a@x.com", err: tt.err}
			router := newAuthRouter(parser)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if tt.err == nil && parser.calls != 0 {
				t.Error("malformed headers must not reach the parser")
			}
		})
	}
}

func TestAuthMiddleware_AcceptsLowercaseScheme(t *testing.T) {
	router := newAuthRouter(&stubParser{email: "a@x.com"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
