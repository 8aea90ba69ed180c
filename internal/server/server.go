package server

import (
	"net/http"

	"safetydesk/internal/handler"
	"safetydesk/internal/middleware"
	"safetydesk/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// Deps are the constructed handlers and the middleware inputs. Everything
// is injected; the server owns no shared mutable state.
type Deps struct {
	JWTSecret     []byte
	AuthHandler   handler.AuthHandler
	EscapeHandler handler.EscapeHandler
	SealedHandler handler.SealedAuditHandler
	TicketHandler handler.TicketHandler
	FamilyHandler handler.FamilyHandler
}

// NewServer builds the router and wires all routes.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRoutes(deps Deps) {
	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", deps.AuthHandler.Register)
	authGroup.POST("/login", deps.AuthHandler.Login)

	// Authenticated routes
	authRequired := s.router.Group("/api/safety")
	authRequired.Use(middleware.AuthMiddleware(deps.JWTSecret, s.logger))
	{
		safetyTeam := authRequired.Group("")
		safetyTeam.Use(middleware.RequireRole(models.RoleSafetyTeam))
		{
			actions := safetyTeam.Group("/actions")
			actions.POST("/sever", deps.EscapeHandler.SeverGuardianAccess)
			actions.POST("/disable-location", deps.EscapeHandler.DisableLocationFeatures)
			actions.POST("/unenroll-devices", deps.EscapeHandler.UnenrollDevices)
			actions.POST("/grant-legal-parent", deps.EscapeHandler.GrantLegalParentAccess)
			actions.POST("/deny-petition", deps.EscapeHandler.DenyLegalParentPetition)

			safetyTeam.GET("/tickets/:id", deps.TicketHandler.GetTicket)
			safetyTeam.PUT("/tickets/:id/verification", deps.TicketHandler.SetVerificationCheck)

			safetyTeam.GET("/families/:id", deps.FamilyHandler.GetFamily)
		}

		compliance := authRequired.Group("/sealed-audit")
		compliance.Use(middleware.RequireRole(models.RoleCompliance, models.RoleSafetyTeam))
		compliance.POST("/list", deps.SealedHandler.ListSealed)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("port", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
