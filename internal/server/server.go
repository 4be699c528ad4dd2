package server

import (
	"net/http"

	"deliverytrack/internal/config"
	"deliverytrack/internal/handler"
	appmw "deliverytrack/internal/middleware"
	"deliverytrack/internal/model"
	"deliverytrack/internal/realtime"
	"deliverytrack/internal/repository"
	"deliverytrack/internal/service"
	"deliverytrack/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e   *echo.Echo
	hub *realtime.Hub
}

func New(db *gorm.DB, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	corsCfg := middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if cfg.FrontendURL != "" && cfg.FrontendURL != "*" {
		corsCfg.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsCfg.AllowOrigins = []string{"*"}
		corsCfg.AllowCredentials = false
	}
	e.Use(middleware.CORSWithConfig(corsCfg))

	tokens := token.NewManager(cfg.JWTSecret)
	hub := realtime.NewHub()

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	authSvc := service.NewAuthService(userRepo, tokens)
	orderSvc := service.NewOrderService(orderRepo, userRepo, hub)
	statsSvc := service.NewStatsService(orderRepo)
	directory := service.NewUserDirectory(userRepo)

	authMw := appmw.NewAuthMiddleware(tokens, userRepo)
	authHandler := handler.NewAuthHandler(authSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, statsSvc, directory)
	wsHandler := handler.NewWSHandler(hub, authMw)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})
	e.GET("/ws", wsHandler.Serve)

	api := e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	orders := api.Group("/orders", authMw.RequireAuth)
	orders.POST("", orderHandler.Create, authMw.RequireRole(model.RoleBuyer))
	orders.GET("", orderHandler.List)
	orders.PUT("/:id/associate", orderHandler.AssociateBuyer, authMw.RequireRole(model.RoleAdmin))
	orders.PUT("/:id/assign-seller", orderHandler.AssignSeller, authMw.RequireRole(model.RoleAdmin))
	orders.PUT("/:id/next-stage", orderHandler.NextStage, authMw.RequireRole(model.RoleSeller))
	orders.PUT("/:id/not-delivered", orderHandler.NotDelivered, authMw.RequireRole(model.RoleSeller))
	orders.DELETE("/:id", orderHandler.Delete, authMw.RequireRole(model.RoleSeller))
	orders.DELETE("/:id/admin", orderHandler.Delete, authMw.RequireRole(model.RoleAdmin))
	orders.GET("/:id/details", orderHandler.Details, authMw.RequireRole(model.RoleAdmin))
	orders.GET("/stats/all", orderHandler.Stats, authMw.RequireRole(model.RoleAdmin))
	orders.GET("/admin/buyers", orderHandler.ListBuyers, authMw.RequireRole(model.RoleAdmin))
	orders.GET("/admin/sellers", orderHandler.ListSellers, authMw.RequireRole(model.RoleAdmin))

	return &Server{e: e, hub: hub}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
