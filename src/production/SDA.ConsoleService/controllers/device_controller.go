package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
)

// DefaultHealthCheckInterval is sent when a registration gives no interval, in seconds
const DefaultHealthCheckInterval = 10

// DeviceController handles device listing, selection and registration
type DeviceController struct {
	console *Console
	logger  *logger.Logger
}

// NewDeviceController creates a new device controller
func NewDeviceController(console *Console, logger *logger.Logger) *DeviceController {
	return &DeviceController{console: console, logger: logger}
}

// RegisterRoutes registers the device routes
func (c *DeviceController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/devices", c.ListDevices)
	router.POST("/device", c.SelectDevice)
	router.POST("/register", c.Register)
	router.POST("/unregister", c.Unregister)
}

// ListDevices fetches every agent and renders device_table. The table is cleared first,
// so a failed fetch leaves it empty.
func (c *Console) ListDevices(ctx context.Context, sess *session.Session) ([]sdamodels.Device, error) {
	if err := sess.Document.Clear(tables.Devices); err != nil {
		return nil, err
	}
	api, err := c.manager(sess)
	if err != nil {
		return nil, err
	}
	devices, err := api.GetAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	if err := view.Render(sess.Document, tables.Devices, devices, tables.DeviceRow); err != nil {
		return nil, err
	}
	return devices, nil
}

// SelectDevice remembers the device the app views act on
func (c *Console) SelectDevice(sess *session.Session, d sdamodels.Device) {
	sess.SelectDevice(d)
	c.resetTables(sess, tables.Apps, tables.Services)
}

// RegisterDevice asks the agent at host to register with the session's manager
func (c *Console) RegisterDevice(ctx context.Context, sess *session.Session, host string, interval int) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return invalid("Please input a device address")
	}
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}
	api, err := c.manager(sess)
	if err != nil {
		return err
	}
	done, err := sess.Begin("device.register")
	if err != nil {
		return err
	}
	defer done()

	err = api.RegisterDevice(ctx, host, interval)
	c.emit(sess, "device.register", host, err)
	if err != nil {
		return fmt.Errorf("failed to register device %s: %w", host, err)
	}
	return nil
}

// UnregisterDevice removes the selected device from the manager and forgets it
func (c *Console) UnregisterDevice(ctx context.Context, sess *session.Session) error {
	d, err := sess.Device()
	if err != nil {
		return err
	}
	api, err := c.manager(sess)
	if err != nil {
		return err
	}
	done, err := sess.Begin("device.unregister")
	if err != nil {
		return err
	}
	defer done()

	err = api.UnregisterDevice(ctx, d)
	c.emit(sess, "device.unregister", d.ID, err)
	if err != nil {
		return fmt.Errorf("failed to unregister device %s: %w", d.ID, err)
	}
	sess.ClearDevice()
	return nil
}

type DeviceListResponse struct {
	Devices []sdamodels.Device `json:"devices"`
}

func (c *DeviceController) ListDevices(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	devices, err := c.console.ListDevices(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, DeviceListResponse{Devices: devices})
}

type SelectDeviceRequest struct {
	ID   string         `json:"id" binding:"required"`
	Host string         `json:"host"`
	Port sdamodels.Port `json:"port"`
}

func (c *DeviceController) SelectDevice(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req SelectDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	d := sdamodels.Device{ID: req.ID, Host: req.Host, Port: req.Port}
	c.console.SelectDevice(sess, d)
	respondOK(ctx, gin.H{"target": "device", "device": d.Display()})
}

// RegisterRequest accepts the interval as a number or a numeric string
type RegisterRequest struct {
	IP       string      `json:"ip"`
	Interval json.Number `json:"interval"`
}

func (c *DeviceController) Register(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	interval := 0
	if req.Interval != "" {
		n, err := req.Interval.Int64()
		if err != nil {
			respondBadRequest(ctx, fmt.Errorf("invalid interval: %w", err))
			return
		}
		interval = int(n)
	}
	if err := c.console.RegisterDevice(ctx.Request.Context(), sess, req.IP, interval); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, nil)
}

func (c *DeviceController) Unregister(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	if err := c.console.UnregisterDevice(ctx.Request.Context(), sess); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, nil)
}
