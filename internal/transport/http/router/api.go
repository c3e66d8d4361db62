package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"restaurant-booking/internal/core/auth"
	"restaurant-booking/internal/core/server"
	httpez "restaurant-booking/internal/transport/http/ez"
	mdw "restaurant-booking/internal/transport/http/middleware"
)

type Deps struct {
	Log       *zap.Logger
	JWT       *auth.JWTer
	Revoker   *auth.Revoker  // optional
	Users     mdw.UserLookup // current roles; nil trusts the token claim
	CORS      server.Options
	StaticDir string // API engine only
	Limits    Limits
}

type Limits struct {
	RPS            rate.Limit
	Burst          int
	PerIPRPS       rate.Limit
	PerIPBurst     int
	MaxInFlight    int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		RPS:            200,
		Burst:          400,
		PerIPRPS:       20,
		PerIPBurst:     40,
		MaxInFlight:    300,
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 10 * time.Second,
	}
}

func newEngine(d Deps) *gin.Engine {
	httpez.RegisterValidators()
	lim := d.Limits
	if lim == (Limits{}) {
		lim = DefaultLimits()
	}
	r := server.NewRouter(d.Log, d.CORS)
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(),
		mdw.RateLimit(lim.RPS, lim.Burst),
		mdw.RateLimitPerIP(lim.PerIPRPS, lim.PerIPBurst),
		mdw.ConcurrencyLimit(lim.MaxInFlight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout),
	)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

// NewAPIEngine serves /api/v1 for customers and staff.
func NewAPIEngine(d Deps, reg *Registry) *gin.Engine {
	r := newEngine(d)

	api := r.Group("/api/v1")
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, d.Revoker, d.Users, ""))
	reg.MountAPI(api, authed)

	server.ServeSPA(r, d.StaticDir, "/api/", "/health", "/metrics")
	return r
}
