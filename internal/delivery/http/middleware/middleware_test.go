package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"handyman-recruitment-backend/internal/delivery/http/middleware"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/metrics"
	"handyman-recruitment-backend/internal/repository/memory"
	"handyman-recruitment-backend/internal/usecase"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/auth"
	"handyman-recruitment-backend/pkg/security"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (s stubVerifier) Verify(string) (*auth.Identity, error) {
	return s.identity, s.err
}

func newAccess(t *testing.T) (domain.AccessUsecase, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	require.NoError(t, users.UpsertRole(context.Background(), "admin-1", domain.RoleAdmin))
	return usecase.NewAccessUsecase(users, validation.New()), users
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	access, _ := newAccess(t)

	newRouter := func(v middleware.TokenVerifier, required bool, seen **domain.Session) *gin.Engine {
		r := gin.New()
		r.Use(middleware.AuthMiddleware(v, access, required))
		r.GET("/x", func(c *gin.Context) {
			*seen = domain.SessionFromContext(c.Request.Context())
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("required without credential", func(t *testing.T) {
		var s *domain.Session
		w := serve(newRouter(stubVerifier{}, true, &s), httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, s)
	})

	t.Run("optional without credential stays unauthenticated", func(t *testing.T) {
		var s *domain.Session
		w := serve(newRouter(stubVerifier{}, false, &s), httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, s)
		assert.Equal(t, domain.SessionUnauthenticated, s.State)
	})

	t.Run("rejected token fails even when optional", func(t *testing.T) {
		var s *domain.Session
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := serve(newRouter(stubVerifier{err: auth.ErrInvalidToken}, false, &s), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, s)
	})

	t.Run("non-bearer scheme is treated as missing", func(t *testing.T) {
		var s *domain.Session
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		w := serve(newRouter(stubVerifier{identity: &auth.Identity{Subject: "admin-1"}}, true, &s), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token completes the session", func(t *testing.T) {
		var s *domain.Session
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := serve(newRouter(stubVerifier{identity: &auth.Identity{Subject: "admin-1", Email: "a@example.com"}}, true, &s), req)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, s)
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, domain.Principal("admin-1"), s.Principal)
		assert.Equal(t, domain.RoleAdmin, s.Role)
	})

	t.Run("cookie token", func(t *testing.T) {
		var s *domain.Session
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "good"})
		w := serve(newRouter(stubVerifier{identity: &auth.Identity{Subject: "someone"}}, true, &s), req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.RoleGuest, s.Role)
	})
}

func TestRequireRole(t *testing.T) {
	access, users := newAccess(t)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.AuthMiddleware(stubVerifierFromHeader{}, access, true))
	r.GET("/admin", middleware.RequireRole(access, domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := func(sub string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+sub)
		return req
	}

	assert.Equal(t, http.StatusOK, serve(r, request("admin-1")).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, request("user-9")).Code)

	require.NoError(t, users.UpsertRole(context.Background(), "admin-1", domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, serve(r, request("admin-1")).Code)
}

// stubVerifierFromHeader treats the token itself as the subject.
type stubVerifierFromHeader struct{}

func (stubVerifierFromHeader) Verify(token string) (*auth.Identity, error) {
	return &auth.Identity{Subject: token}, nil
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.RequestIDKey))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Header().Get(middleware.RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(r, req).Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Header().Get(middleware.RequestIDHeader))
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CSRFMiddleware(false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("safe method issues a token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.CSRFTokenCookieName+"=")
	})

	t.Run("anonymous form post is not checked", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bearer auth is not checked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer t")
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "t"})
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	})

	t.Run("cookie auth without header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "t"})
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	})

	t.Run("cookie auth with mismatched header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "t"})
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(middleware.CSRFTokenHeaderName, "abd")
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	})

	t.Run("cookie auth with matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "t"})
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(middleware.CSRFTokenHeaderName, "abc")
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	key := uuid.NewString()
	r := gin.New()
	r.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
		KeyFunc:   func(*gin.Context) string { return key },
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues("custom"))

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues("custom")))
}

func TestUploadRateLimitMiddleware(t *testing.T) {
	newRouter := func() *gin.Engine {
		r := gin.New()
		r.POST("/candidates/:id/documents/:type", middleware.UploadRateLimitMiddleware(security.NewUploadLimiter(100, 2)),
			func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("equivalent id spellings share one daily bucket", func(t *testing.T) {
		r := newRouter()
		var allowed int
		for _, id := range []string{"1", "1", "01", "001", "+1", "0001"} {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/candidates/"+id+"/documents/cv", nil))
			if w.Code == http.StatusOK {
				allowed++
			} else {
				assert.Equal(t, http.StatusTooManyRequests, w.Code, "id %q", id)
			}
		}
		assert.Equal(t, 2, allowed)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/candidates/2/documents/cv", nil))
		assert.Equal(t, http.StatusOK, w.Code, "another candidate has its own bucket")
	})

	t.Run("malformed id is rejected before counting", func(t *testing.T) {
		r := newRouter()
		for _, id := range []string{"abc", "0", "-1", "1.0"} {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/candidates/"+id+"/documents/cv", nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
		}
		for i := 0; i < 2; i++ {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/candidates/1/documents/cv", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("uploads to unknown candidates still count", func(t *testing.T) {
		r := gin.New()
		r.POST("/candidates/:id/documents/:type", middleware.UploadRateLimitMiddleware(security.NewUploadLimiter(2, 100)),
			func(c *gin.Context) { c.Status(http.StatusNotFound) })

		for _, id := range []string{"900", "901"} {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/candidates/"+id+"/documents/cv", nil))
			require.Equal(t, http.StatusNotFound, w.Code)
		}
		w := serve(r, httptest.NewRequest(http.MethodPost, "/candidates/902/documents/cv", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/validation", func(c *gin.Context) {
		c.Error(apperror.Validation("Validation failed", []string{"Email: is required"}))
	})
	r.GET("/missing", func(c *gin.Context) { c.Error(apperror.NotFound("Candidate not found")) })
	r.GET("/upstream", func(c *gin.Context) { c.Error(apperror.Upstream("Blob store unavailable", errors.New("dial tcp"))) })
	r.GET("/internal", func(c *gin.Context) { c.Error(errors.New("pq: relation does not exist")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/validation", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email: is required")

	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil)).Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/upstream", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware("https://handyman.example, https://www.handyman.example/", true))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", origin)
		return serve(r, req)
	}

	w := preflight("https://www.handyman.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://www.handyman.example", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusForbidden, preflight("http://localhost:3000").Code)
	assert.Equal(t, http.StatusForbidden, preflight("https://evil.example").Code)
}
