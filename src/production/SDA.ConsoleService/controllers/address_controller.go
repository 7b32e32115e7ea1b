package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
)

// AddressController reads and sets the manager address of a session
type AddressController struct {
	console *Console
	logger  *logger.Logger
}

// NewAddressController creates a new address controller
func NewAddressController(console *Console, logger *logger.Logger) *AddressController {
	return &AddressController{console: console, logger: logger}
}

// RegisterRoutes registers the address routes
func (c *AddressController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/address", c.GetAddress)
	router.POST("/address", c.SetAddress)
	router.GET("/check/address", c.CheckAddress)
}

type AddressRequest struct {
	IP string `json:"ip"`
}

// SetManagerAddress points the session at another manager. Selections made against
// the previous manager are dropped and the tables cleared.
func (c *Console) SetManagerAddress(sess *session.Session, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return invalid("Please input the SDA Manager address")
	}
	if sess.Address() != address {
		sess.SetAddress(address)
		sess.Document.ClearAll()
	}
	return nil
}

func (c *AddressController) GetAddress(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	respondOK(ctx, AddressRequest{IP: sess.Address()})
}

func (c *AddressController) SetAddress(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}

	var req AddressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	if err := c.console.SetManagerAddress(sess, req.IP); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, AddressRequest{IP: sess.Address()})
}

func (c *AddressController) CheckAddress(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	if sess.Address() == "" {
		respondError(ctx, c.logger, invalid(ErrNoAddress.Error()))
		return
	}
	respondOK(ctx, AddressRequest{IP: sess.Address()})
}
