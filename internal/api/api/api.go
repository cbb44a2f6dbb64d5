package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"agriedge/cmd/middleware"
	"agriedge/internal/metrics"
	"agriedge/internal/service"
)

type Routers struct {
	Service    service.Service
	Identities middleware.IdentityResolver
	Admins     middleware.AdminChecker
	Metrics    *metrics.Metrics
	Mode       string
}

func NewRouters(r *Routers) *ginext.Engine {
	mode := r.Mode
	if mode == "" {
		mode = "release"
	}
	app := ginext.New(mode)

	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware())
	app.Use(r.Metrics.Middleware())
	app.Use(cors.New(corsConfig()))

	app.GET("/healthz", r.Service.Health)
	app.GET("/metrics", r.Metrics.Handler())

	apiGroup := app.Group("/v1")
	apiGroup.Use(middleware.Authenticate(r.Identities))

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", r.Service.Register)
	authGroup.POST("/signup", r.Service.Signup)
	authGroup.POST("/login", r.Service.Login)
	authGroup.POST("/logout", middleware.RequireUser(), r.Service.Logout)
	authGroup.GET("/me", middleware.RequireUser(), r.Service.Me)

	apiGroup.GET("/interests", r.Service.Interests)
	apiGroup.POST("/registrations/validate", r.Service.ValidateDraft)
	apiGroup.POST("/registrations", r.Service.Submit)

	admin := apiGroup.Group("/admin")
	admin.Use(middleware.RequireAdmin(r.Admins))
	admin.POST("/listing", r.Service.LoadListing)
	admin.GET("/listing", r.Service.GetListing)
	admin.DELETE("/listing", r.Service.DiscardListing)
	admin.POST("/listing/sort", r.Service.SortListing)
	admin.GET("/export.csv", r.Service.ExportCSV)
	admin.GET("/export.pdf", r.Service.ExportPDF)

	return app
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization", "Accept-Language", middleware.RequestIDHeader)
	cfg.AddExposeHeaders("Content-Disposition", middleware.RequestIDHeader)
	return cfg
}
