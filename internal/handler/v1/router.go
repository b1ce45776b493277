package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the per-resource handlers the router mounts.
type Handlers struct {
	Auth   *AuthHandler
	Queue  *QueueHandler
	Charge *ChargeHandler
	Vitals *VitalsHandler
}

// NewRouter builds the gin engine with the full v1 route table. Health and
// metrics endpoints are unauthenticated; everything under /api/v1 except auth
// requires a valid access token.
func NewRouter(cfg *config.Config, jwtManager *auth.JWTManager, collector *metrics.Collector, h Handlers) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware(collector))
	r.Use(NewRateLimiter(cfg.RateLimit).Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(AuthMiddleware(jwtManager))

	queueGroup := protected.Group("/queue")
	{
		queueGroup.GET("", h.Queue.List)
		queueGroup.POST("", RequireRoles(domain.RoleReceptionist, domain.RoleNurse), h.Queue.Enqueue)
		queueGroup.PATCH("/:id/status", RequireRoles(domain.RoleDoctor, domain.RoleNurse, domain.RoleReceptionist), h.Queue.Transition)
		queueGroup.POST("/reorder", RequireRoles(domain.RoleDoctor, domain.RoleNurse, domain.RoleReceptionist), h.Queue.Reorder)
		queueGroup.GET("/:id/vitals", RequireRoles(domain.RoleNurse, domain.RoleDoctor), h.Vitals.LatestForEntry)
	}

	admissionGroup := protected.Group("/admissions/:admissionId")
	{
		admissionGroup.GET("/charges", RequireRoles(domain.RoleBilling, domain.RoleDoctor, domain.RoleNurse), h.Charge.List)
		admissionGroup.POST("/charges", RequireRoles(domain.RoleBilling, domain.RoleDoctor, domain.RoleNurse), h.Charge.Add)
	}

	chargeGroup := protected.Group("/charges")
	{
		chargeGroup.DELETE("/:id", RequireRoles(domain.RoleBilling, domain.RoleDoctor, domain.RoleNurse), h.Charge.Remove)
		chargeGroup.POST("/mark-billed", RequireRoles(domain.RoleBilling), h.Charge.MarkBilled)
	}

	vitalsGroup := protected.Group("/vitals")
	{
		vitalsGroup.POST("", RequireRoles(domain.RoleNurse, domain.RoleDoctor), h.Vitals.Record)
		vitalsGroup.GET("/patients/:patientId", RequireRoles(domain.RoleNurse, domain.RoleDoctor), h.Vitals.ListForPatient)
	}

	return r
}
