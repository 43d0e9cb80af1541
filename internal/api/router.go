package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/labreserve/lab-reservation-backend/internal/auth"
	"github.com/labreserve/lab-reservation-backend/internal/directory"
	dirHttp "github.com/labreserve/lab-reservation-backend/internal/directory/http"
	"github.com/labreserve/lab-reservation-backend/internal/reservation"
	rsvHttp "github.com/labreserve/lab-reservation-backend/internal/reservation/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction       bool
	ProdOrigins        string
	DirectoryService   directory.Service
	ReservationService reservation.Service
	JWTManager         *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// approverMiddleware: Further checks the authenticated user holds the approver role.
	approverMiddleware := RequireApprover()

	dirHandler := dirHttp.NewHandler(cfg.DirectoryService)
	rsvHandler := rsvHttp.NewHandler(cfg.ReservationService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		dirHttp.RegisterRoutes(v1, dirHandler, authMiddleware, approverMiddleware)
		rsvHttp.RegisterRoutes(v1, rsvHandler, authMiddleware, approverMiddleware)
	}

	return r
}
