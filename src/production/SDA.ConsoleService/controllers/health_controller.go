package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
)

// HealthChecker reports the status of the console's own dependencies
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]interface{}
}

// HealthController handles liveness and readiness probes
type HealthController struct {
	checker  HealthChecker
	managers manager.Factory
	address  string
	logger   *logger.Logger
}

// NewHealthController creates a new health controller. With a non-empty address,
// readiness also probes that manager.
func NewHealthController(checker HealthChecker, managers manager.Factory, address string, logger *logger.Logger) *HealthController {
	return &HealthController{
		checker:  checker,
		managers: managers,
		address:  address,
		logger:   logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	status := c.checker.HealthCheck(reqCtx)
	checks, _ := status["checks"].(map[string]interface{})
	if checks == nil {
		checks = make(map[string]interface{})
		status["checks"] = checks
	}

	if c.address != "" {
		if _, err := c.managers(c.address).GetAgents(reqCtx); err != nil {
			status["status"] = "degraded"
			checks["manager"] = map[string]interface{}{"status": "error", "address": c.address, "error": err.Error()}
		} else {
			checks["manager"] = map[string]interface{}{"status": "ok", "address": c.address}
		}
	}

	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, status)
}
