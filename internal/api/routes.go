package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the flag routes on rg. Mutating routes pass
// through mutate (rate limiting, if any).
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers, mutate ...gin.HandlerFunc) {
	withMutate := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(mutate), h)
	}

	flags := rg.Group("/flags")
	{
		flags.GET("", handlers.HandleList)
		flags.GET("/:name", handlers.HandleStatus)
		flags.GET("/:name/history", handlers.HandleHistory)

		flags.POST("", withMutate(handlers.HandleCreate)...)
		flags.POST("/:name/toggle", withMutate(handlers.HandleToggle)...)
	}

	rg.GET("/healthz", handlers.HandleHealth)
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Limiter, if set, throttles create and toggle requests.
	Limiter Allower

	// Observer, if set, records request metrics.
	Observer RequestObserver

	// Gatherer, if set, is served on GET /metrics.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the complete HTTP handler.
func NewRouter(handlers *Handlers, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), Logger())
	if opts.Observer != nil {
		router.Use(Observe(opts.Observer))
	}

	var mutate []gin.HandlerFunc
	if opts.Limiter != nil {
		mutate = append(mutate, RateLimit(opts.Limiter))
	}
	RegisterRoutes(&router.RouterGroup, handlers, mutate...)

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found", Code: "ROUTE_NOT_FOUND"})
	})
	return router
}
