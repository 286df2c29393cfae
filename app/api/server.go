package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lovlytt/lovlytt/app/cfg"
	"github.com/lovlytt/lovlytt/app/forward"
)

const requestIDKey = "request_id"

func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	appCfg := cfg.Get()

	// Browse endpoints
	r.GET("/proposals", handler.ListProposals)
	r.GET("/proposals/:id", handler.GetProposal)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Pipeline endpoints, each guarded by its own shared secret
	api := r.Group("/api")
	{
		api.POST("/ingest", requireSecret("x-ingest-secret", appCfg.IngestSecret), handler.Ingest)
		api.POST("/match", requireSecret("x-webhook-secret", appCfg.WebhookSecret), handler.MatchWebhook)
		api.POST("/link", requireSecret("x-worker-secret", appCfg.MatcherSecret), handler.Link)
		api.POST("/documents", requireSecret("x-ingest-secret", appCfg.IngestSecret), handler.UpsertDocument)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "Lovlytt",
			"version":     appCfg.Version,
			"description": "Norwegian law proposal ingestion and linking pipeline",
			"endpoints": map[string]string{
				"proposals": "/proposals",
				"proposal":  "/proposals/<id>",
				"health":    "/health",
				"stats":     "/stats",
				"ingest":    "/api/ingest (POST, requires x-ingest-secret header)",
				"match":     "/api/match (POST, requires x-webhook-secret header)",
				"link":      "/api/link (POST, requires x-worker-secret header)",
				"documents": "/api/documents (POST, requires x-ingest-secret header)",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// requestIDMiddleware keeps an inbound X-Request-ID or assigns a fresh one, so
// every pipeline hop through this service stays correlatable in logs.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := forward.ResolveRequestID(c.GetHeader("X-Request-ID"), "api")
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requireSecret guards a pipeline endpoint with a shared-secret header. An
// endpoint whose secret is not configured stays closed.
func requireSecret(header, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Endpoint disabled"})
			c.Abort()
			return
		}

		if c.GetHeader(header) != secret {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or missing secret", "header": header})
			c.Abort()
			return
		}

		c.Next()
	}
}
