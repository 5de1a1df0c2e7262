package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/pkg/cache"
	"stockledger/internal/pkg/logger"
	"stockledger/internal/pkg/metrics"
	"stockledger/internal/pkg/middleware"
	"stockledger/internal/pkg/token"
)

// counterCache implementa cache.Client em memória, só com o necessário para o rate limiter.
type counterCache struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	fail    bool
}

func newCounterCache() *counterCache {
	return &counterCache{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (c *counterCache) Get(ctx context.Context, key string) (string, error) { return "", cache.ErrCacheMiss }
func (c *counterCache) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}
func (c *counterCache) Delete(ctx context.Context, key string) error { return nil }
func (c *counterCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return 0, errors.New("redis indisponível")
	}
	c.counts[key]++
	c.expires[key] = ttl
	return c.counts[key], nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	c := newCounterCache()
	h := middleware.RateLimiter(c, 2, time.Minute, logger.NewNop())(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, time.Minute, c.expires["rate-limit:10.0.0.1"])
}

func TestRateLimiter_EveryIncrementCarriesWindow(t *testing.T) {
	c := newCounterCache()
	h := middleware.RateLimiter(c, 5, 30*time.Second, logger.NewNop())(okHandler)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:1"
		h.ServeHTTP(httptest.NewRecorder(), req)
		// o contador nunca fica sem expiração, mesmo que uma chamada anterior tenha falhado
		assert.Equal(t, 30*time.Second, c.expires["rate-limit:10.0.0.2"])
		delete(c.expires, "rate-limit:10.0.0.2")
	}
}

func TestRateLimiter_FailsOpenWithoutCache(t *testing.T) {
	c := newCounterCache()
	c.fail = true
	h := middleware.RateLimiter(c, 1, time.Minute, logger.NewNop())(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := token.NewService("segredo-de-teste", time.Hour)
	auth := middleware.NewAuthMiddleware(tokens)

	var seen middleware.UserClaims
	protected := auth(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.GetUserClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("sem header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, httptest.NewRequest(http.MethodPost, "/v1/inventory", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("token inválido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/inventory", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token válido", func(t *testing.T) {
		signed, err := tokens.GenerateToken("user-1", "operator")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/inventory", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", seen.UserID)
		assert.Equal(t, "operator", seen.Role)
	})
}

func TestObservability_LabelsByPattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/inventory/{productID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := middleware.Observability(m, logger.NewNop())(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/inventory/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/inventory/b", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /v1/inventory/{productID}", "404")))
}
