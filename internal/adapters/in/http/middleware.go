package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
	"golang.org/x/time/rate"
)

func basicAuth(clients []config.ConfigBasicClient) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth || !validClient(clients, username, password) {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Next()
	}
}

// Сравниваем со всеми клиентами, чтобы время ответа не зависело от позиции клиента в списке
func validClient(clients []config.ConfigBasicClient, username, password string) bool {
	valid := false
	for _, client := range clients {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1
		if userOK && passOK {
			valid = true
		}
	}
	return valid
}

const (
	rateLimiterMaxClients = 10000
	rateLimiterIdleTTL    = 10 * time.Minute
)

// rateLimiterStore хранит лимитер на каждый IP клиента.
// Лимитеры IP, не приходивших дольше idleTTL, вытесняются.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newRateLimiterStore(rps float64, burst int) *rateLimiterStore {
	return newRateLimiterStoreSized(rps, burst, rateLimiterMaxClients, rateLimiterIdleTTL)
}

func newRateLimiterStoreSized(rps float64, burst int, size int, idleTTL time.Duration) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, idleTTL),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters.Get(ip)
	if !exists {
		limiter = rate.NewLimiter(s.limit, s.burst)
	}
	// Повторный Add продлевает срок жизни записи
	s.limiters.Add(ip, limiter)
	return limiter
}

func (s *rateLimiterStore) size() int {
	return s.limiters.Len()
}

func rateLimit(store *rateLimiterStore, logger out.LoggerPort) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()
		if !store.getLimiter(ip).Allow() {
			logger.Warn("http.rate_limit.exceeded", out.LogFields{
				"ip":   ip,
				"path": ctx.FullPath(),
			})
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}

		ctx.Next()
	}
}

// requestTimeout ограничивает время обработки запроса через контекст
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if timeout <= 0 {
			ctx.Next()
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), timeout)
		defer cancel()

		ctx.Request = ctx.Request.WithContext(reqCtx)
		ctx.Next()
	}
}

func requestLogger(logger out.LoggerPort) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		logger.Info("http.request", out.LogFields{
			"method":  ctx.Request.Method,
			"path":    ctx.FullPath(),
			"status":  ctx.Writer.Status(),
			"elapsed": time.Since(start).Milliseconds(),
		})
	}
}
