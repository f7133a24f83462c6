package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookmybus/internal/auth"
	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type accountTable map[int64]models.User

func (a accountTable) GetByID(_ context.Context, id int64) (models.User, error) {
	if id == 99 {
		return models.User{}, errors.New("connection reset")
	}
	u, ok := a[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "User"}
	}
	return u, nil
}

func TestRequestIDKeepsOrMints(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := serve(r, req)
	if w.Body.String() != "abc-123" || w.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatalf("client id not kept: body=%q header=%q", w.Body.String(), w.Header().Get(requestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	w = serve(r, req)
	if got := w.Body.String(); len(got) != 36 {
		t.Fatalf("expected minted uuid, got %q", got)
	}
}

func TestAuthAndRequireRoles(t *testing.T) {
	tokens := auth.TokenService{Secret: []byte("s3cret"), TTL: time.Hour}
	userTok, _ := tokens.Issue(7, domain.RoleUser)
	adminTok, _ := tokens.Issue(1, domain.RoleAdmin)
	demotedTok, _ := tokens.Issue(2, domain.RoleAdmin)
	goneTok, _ := tokens.Issue(3, domain.RoleUser)
	brokenTok, _ := tokens.Issue(99, domain.RoleUser)
	accounts := accountTable{
		1: {ID: 1, Role: domain.RoleAdmin},
		2: {ID: 2, Role: domain.RoleUser},
		7: {ID: 7, Role: domain.RoleUser},
	}

	r := gin.New()
	r.GET("/me", Auth(tokens, accounts), func(c *gin.Context) {
		req := Requester(c)
		c.JSON(http.StatusOK, req)
	})
	r.GET("/admin", Auth(tokens, accounts), RequireRoles(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/open", OptionalAuth(tokens, accounts), func(c *gin.Context) {
		c.String(http.StatusOK, string(Requester(c).Role))
	})

	cases := []struct {
		name, path, header, value string
		want                      int
	}{
		{"no token", "/me", "", "", http.StatusUnauthorized},
		{"bad scheme", "/me", "Authorization", "Basic " + userTok, http.StatusUnauthorized},
		{"bearer", "/me", "Authorization", "Bearer " + userTok, http.StatusOK},
		{"x-auth-token", "/me", "X-Auth-Token", userTok, http.StatusOK},
		{"user on admin route", "/admin", "Authorization", "Bearer " + userTok, http.StatusUnauthorized},
		{"admin on admin route", "/admin", "Authorization", "bearer " + adminTok, http.StatusNoContent},
		{"demoted admin on admin route", "/admin", "Authorization", "Bearer " + demotedTok, http.StatusUnauthorized},
		{"deleted account", "/me", "Authorization", "Bearer " + goneTok, http.StatusUnauthorized},
		{"account lookup fails", "/me", "Authorization", "Bearer " + brokenTok, http.StatusInternalServerError},
		{"anonymous open route", "/open", "", "", http.StatusOK},
		{"bad token open route", "/open", "Authorization", "Bearer nope", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			w := serve(r, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	if got := serve(r, req).Body.String(); got != "admin" {
		t.Fatalf("optional auth role = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+demotedTok)
	if got := serve(r, req).Body.String(); got != "user" {
		t.Fatalf("optional auth should use the stored role, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+demotedTok)
	var who domain.Requester
	if err := json.Unmarshal(serve(r, req).Body.Bytes(), &who); err != nil {
		t.Fatalf("decode requester: %v", err)
	}
	if who.UserID != 2 || who.Role != domain.RoleUser {
		t.Fatalf("requester = %+v, want user 2 with role user", who)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://bookmybus.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://bookmybus.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://bookmybus.example" {
		t.Fatalf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin status = %d", w.Code)
	}
}
