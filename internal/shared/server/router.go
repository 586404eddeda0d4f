package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zipduck-backend/internal/analysis"
	"zipduck-backend/internal/documents"
	"zipduck-backend/internal/eligibility"
	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
	"zipduck-backend/internal/shared/config"
	"zipduck-backend/internal/shared/metrics"
	"zipduck-backend/internal/shared/server/middleware"
	"zipduck-backend/internal/shared/server/respond"
)

// RouterDeps lists everything the HTTP surface needs.
type RouterDeps struct {
	Config             config.Config
	DB                 *sql.DB
	ProfileHandler     *profiles.Handler
	OfferHandler       *offers.Handler
	EligibilityHandler *eligibility.Handler
	DocumentHandler    *documents.Handler
	AnalysisHandler    *analysis.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.DB))
	deps.ProfileHandler.RegisterRoutes(api)
	deps.OfferHandler.RegisterRoutes(api)
	deps.EligibilityHandler.RegisterRoutes(api)
	deps.DocumentHandler.RegisterRoutes(api)
	deps.AnalysisHandler.RegisterRoutes(api)

	return r
}

func healthHandler(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{"ok": true, "store": "memory"}
		if database != nil {
			payload["store"] = "postgres"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.PingContext(ctx); err != nil {
				respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false, "store": "postgres"})
				return
			}
		}
		respond.JSON(c, http.StatusOK, payload)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
