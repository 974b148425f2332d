package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/algo-quickstart/internal/config"
)

func NewRouter(h *Handler, cfg *config.ServerSettings) *gin.Engine {
	r := gin.Default()
	r.Use(requestID())
	if h.metrics != nil {
		r.Use(instrument(h.metrics))
	}

	policy := newOriginPolicy(cfg.AllowedOrigins, cfg.PreviewDomainSuffixes)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: policy.allows,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", HeaderRequestID},
		ExposeHeaders:   []string{HeaderRequestID},
		MaxAge:          corsMaxAge,
	}))

	r.GET("/health", h.Health)

	limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	api := r.Group("/api")
	{
		api.POST("/pin-image", limiter.middleware(h.metrics), h.PinImage)
	}

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	if h.fetcher != nil {
		r.GET("/ipfs/:cid", h.FetchContent)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{JSONKeyError: HTTPErrorNotFoundText})
	})

	return r
}
