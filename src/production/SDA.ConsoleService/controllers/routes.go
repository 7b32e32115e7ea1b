package controllers

import (
	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/middleware"
)

// BasePath prefixes every console endpoint
const BasePath = "/sdamanager"

// RegisterRoutes mounts the console endpoints under BasePath behind the session middleware
func RegisterRoutes(router *gin.Engine, console *Console, sessions *middleware.SessionMiddleware, log *logger.Logger) {
	api := router.Group(BasePath, sessions.Attach())

	NewAddressController(console, log).RegisterRoutes(api)
	NewDeviceController(console, log).RegisterRoutes(api)
	NewAppController(console, log).RegisterRoutes(api)
	NewYamlController(console, log).RegisterRoutes(api)
	NewGroupController(console, log).RegisterRoutes(api)
	NewViewController(log).RegisterRoutes(api)
}
