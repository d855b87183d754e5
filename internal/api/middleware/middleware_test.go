package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/config"
	"github.com/Oskru/study-smart/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mocks ──

type mockChecker struct {
	revoked map[string]bool
	err     error
}

func (m *mockChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], m.err
}

type mockLimiter struct {
	counts map[string]int
	err    error
}

func (m *mockLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-0123456789",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func protectedEngine(mgr *jwt.Manager, checker TokenChecker) *gin.Engine {
	r := gin.New()
	r.GET("/p", JWTAuth(mgr, checker), func(c *gin.Context) {
		claims := c.MustGet(CtxClaims).(*jwt.Claims)
		c.String(http.StatusOK, c.GetString(CtxUserID)+"|"+c.GetString(CtxRole)+"|"+claims.ID)
	})
	return r
}

func doGet(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// JWTAuth
// ═══════════════════════════════════════════════════════════

func TestJWTAuth(t *testing.T) {
	mgr := newManager()
	access, _ := mgr.GenerateAccessToken("u-1", "student")
	refresh, _ := mgr.GenerateRefreshToken("u-1", "student")

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + access, http.StatusUnauthorized},
		{"空 Token", "Bearer ", http.StatusUnauthorized},
		{"伪造 Token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"Refresh Token 不能访问", "Bearer " + refresh, http.StatusUnauthorized},
		{"合法 Access Token", "Bearer " + access, http.StatusOK},
	}
	r := protectedEngine(mgr, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, "/p", tt.auth)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	w := doGet(r, "/p", "Bearer "+access)
	if !strings.HasPrefix(w.Body.String(), "u-1|student|") {
		t.Errorf("上下文注入不正确: %s", w.Body.String())
	}
}

func TestJWTAuth_Blacklist(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("u-1", "lecturer")
	claims, _ := mgr.ParseToken(token)

	checker := &mockChecker{revoked: map[string]bool{claims.ID: true}}
	if w := doGet(protectedEngine(mgr, checker), "/p", "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("已注销 Token 期望 401，实际 %d", w.Code)
	}

	failing := &mockChecker{err: errors.New("redis down")}
	if w := doGet(protectedEngine(mgr, failing), "/p", "Bearer "+token); w.Code != http.StatusServiceUnavailable {
		t.Errorf("黑名单查询失败期望 503，实际 %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		if role := c.Query("role"); role != "" {
			c.Set(CtxRole, role)
		}
		c.Next()
	}, RoleAuth("admin", "planner"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		query string
		want  int
	}{
		{"", http.StatusUnauthorized},
		{"?role=student", http.StatusForbidden},
		{"?role=planner", http.StatusOK},
		{"?role=admin", http.StatusOK},
	}
	for _, tt := range tests {
		if w := doGet(r, "/admin"+tt.query, ""); w.Code != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.want, w.Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// RateLimit / RequestID / BodyLimit
// ═══════════════════════════════════════════════════════════

func TestRateLimit(t *testing.T) {
	limiter := &mockLimiter{counts: map[string]int{}}
	r := gin.New()
	r.GET("/login", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, doGet(r, "/login", "").Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("限流结果不符: %v", codes)
	}
}

func TestRateLimit_Degrades(t *testing.T) {
	for name, limiter := range map[string]RateLimiter{
		"nil":   nil,
		"error": &mockLimiter{err: errors.New("boom")},
	} {
		r := gin.New()
		r.GET("/x", RateLimit(limiter, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
		for i := 0; i < 3; i++ {
			if w := doGet(r, "/x", ""); w.Code != http.StatusOK {
				t.Errorf("%s: 第 %d 次期望放行，实际 %d", name, i+1, w.Code)
			}
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "trace-123" || w.Body.String() != "trace-123" {
		t.Errorf("应沿用上游 Request-ID，实际 %q", w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 100))
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("超长 Request-ID 应重新生成 UUID，实际 %q", got)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(8), func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("tiny")))
	if w.Code != http.StatusOK {
		t.Errorf("小请求体期望 200，实际 %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("this body is too large")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("超大请求体期望 413，实际 %d", w.Code)
	}
}
