package httpapi

import (
	"errors"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/ledger"
	"vyapar/backend/internal/service"
	"vyapar/backend/internal/store"
)

const (
	maxBodyBytes  = 1 << 20
	genericFailed = "operation did not complete, try again"
)

type Options struct {
	AllowedOrigins []string
	EnablePprof    bool
	EnableMetrics  bool
}

type API struct {
	service      *service.Service
	auth         *AuthManager
	opts         Options
	loginLimiter *attemptLimiter
	metrics      *metrics
}

func New(svc *service.Service, auth *AuthManager, opts Options) *API {
	return &API{
		service:      svc,
		auth:         auth,
		opts:         opts,
		loginLimiter: newAttemptLimiter(5, time.Minute),
		metrics:      newMetrics(),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

// clientKey is the remote host without port. Forwarded headers are not trusted.
func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := gin.New()
	r.ForwardedByClientIP = false
	r.HandleMethodNotAllowed = true
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, l zerolog.Logger) zerolog.Logger {
			return l.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Logger()
		})))
	if h := a.corsHandler(); h != nil {
		r.Use(h)
	}
	r.Use(securityHeaders)
	r.Use(a.metrics.middleware())

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, errors.New("not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})

	r.GET("/healthz", a.handleHealth)
	if a.opts.EnableMetrics {
		r.GET("/metrics", a.metrics.handler())
	}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", a.handleLogin)

	staff := v1.Group("", a.requireAuth(domain.RoleOwner, domain.RoleStaff))
	staff.POST("/messages", a.handleMessage)
	staff.GET("/sales", a.handleListSales)
	staff.POST("/sales", a.handleRecordSale)
	staff.GET("/inventory", a.handleListInventory)
	staff.POST("/inventory", a.handleAddInventory)
	staff.GET("/inventory/low-stock", a.handleLowStock)
	staff.GET("/expenses", a.handleListExpenses)
	staff.POST("/expenses", a.handleRecordExpense)
	staff.GET("/expenses/suggest-category", a.handleSuggestCategory)
	staff.GET("/customers", a.handleListCustomers)
	staff.POST("/customers", a.handleSaveCustomer)

	owner := v1.Group("", a.requireAuth(domain.RoleOwner))
	owner.GET("/dashboard", a.handleDashboard)
	owner.GET("/reports/profit-loss", a.handleStatement)
	owner.GET("/reports/top-items", a.handleTopItems)
	owner.GET("/reports/top-customers", a.handleTopCustomers)
	owner.GET("/reports/daily-sales", a.handleDailySales)
	owner.GET("/reports/export/:table", a.handleExport)
	owner.GET("/insights/advice", a.handleAdvice)
	owner.POST("/insights/ask", a.handleAsk)
	if a.opts.EnablePprof {
		pprof.RouteRegister(owner, "debug/pprof")
	}

	return r
}

func (a *API) corsHandler() gin.HandlerFunc {
	if len(a.opts.AllowedOrigins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(a.opts.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = a.opts.AllowedOrigins
	}
	return cors.New(cfg)
}

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Cross-Origin-Opener-Policy", "same-origin")
	if c.Request.Body != nil && c.Request.Method == http.MethodPost {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	}
	c.Next()
}

func (a *API) requireAuth(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(c, http.StatusUnauthorized, errors.New("missing bearer token"))
			c.Abort()
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
			writeError(c, http.StatusForbidden, errors.New("forbidden role"))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// writeServiceError maps service errors to statuses. Backend failures get a generic
// message; the detail only goes to the log.
func writeServiceError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, verr)
	case errors.Is(err, ledger.ErrItemNotFound):
		writeError(c, http.StatusNotFound, err)
	case errors.Is(err, store.ErrUnknownTable):
		writeError(c, http.StatusBadRequest, err)
	default:
		log.Error().Err(err).Str("request-id", requestid.Get(c)).Str("path", c.Request.URL.Path).Msg("backend operation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": genericFailed})
	}
}
