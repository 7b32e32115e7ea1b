package controllers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
)

// Lifecycle actions on an installed app
const (
	ActionStart  = "start"
	ActionStop   = "stop"
	ActionUpdate = "update"
)

// AppController handles the apps of the selected device
type AppController struct {
	console *Console
	logger  *logger.Logger
}

// NewAppController creates a new app controller
func NewAppController(console *Console, logger *logger.Logger) *AppController {
	return &AppController{console: console, logger: logger}
}

// RegisterRoutes registers the app routes
func (c *AppController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/apps", c.ListApps)
	router.POST("/app", c.SelectApp)
	router.DELETE("/app", c.DeleteApp)
	router.POST("/app/install", c.InstallApp)
	router.GET("/app/start", c.lifecycle(ActionStart))
	router.GET("/app/stop", c.lifecycle(ActionStop))
	router.GET("/app/update", c.lifecycle(ActionUpdate))
	router.GET("/app/yaml", c.GetAppYaml)
	router.POST("/app/yaml", c.UpdateAppYaml)
}

// ListApps renders app_table for the selected device, one manager call per app for its
// state and service count. Names come from the label store and fall back to the id.
func (c *Console) ListApps(ctx context.Context, sess *session.Session) (sdamodels.Device, []sdamodels.App, error) {
	doc := sess.Document
	if err := doc.Clear(tables.Apps); err != nil {
		return sdamodels.Device{}, nil, err
	}
	d, err := sess.Device()
	if err != nil {
		return sdamodels.Device{}, nil, err
	}
	api, err := c.manager(sess)
	if err != nil {
		return d, nil, err
	}

	agent, err := api.GetAgent(ctx, d.ID)
	if err != nil {
		return d, nil, fmt.Errorf("failed to get device %s: %w", d.ID, err)
	}
	names := c.labels(ctx, sdamodels.LabelApp)

	apps := make([]sdamodels.App, 0, len(agent.Apps))
	for _, id := range agent.Apps {
		info, err := api.GetApp(ctx, d.ID, id)
		if err != nil {
			return d, nil, fmt.Errorf("failed to get app %s: %w", id, err)
		}
		name := names[id]
		if name == "" {
			name = id
		}
		apps = append(apps, sdamodels.App{ID: id, Name: name, Services: len(info.Services), State: info.State})
	}

	if err := view.Render(doc, tables.Apps, apps, tables.AppRow); err != nil {
		return d, nil, err
	}
	return d, apps, nil
}

// SelectApp fetches appID on the selected device, selects it and renders service_table
func (c *Console) SelectApp(ctx context.Context, sess *session.Session, appID string) (*sdamodels.AppInfo, error) {
	doc := sess.Document
	if err := doc.Clear(tables.Services); err != nil {
		return nil, err
	}
	d, err := sess.Device()
	if err != nil {
		return nil, err
	}
	api, err := c.manager(sess)
	if err != nil {
		return nil, err
	}

	info, err := api.GetApp(ctx, d.ID, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to get app %s: %w", appID, err)
	}
	sess.SelectApp(appID)
	if err := view.Render(doc, tables.Services, info.Services, tables.ServiceRow); err != nil {
		return nil, err
	}
	return info, nil
}

// DeleteApp removes appID from the selected device and refreshes app_table
func (c *Console) DeleteApp(ctx context.Context, sess *session.Session, appID string) error {
	d, err := sess.Device()
	if err != nil {
		return err
	}
	api, err := c.manager(sess)
	if err != nil {
		return err
	}
	done, err := sess.Begin("app.delete")
	if err != nil {
		return err
	}
	defer done()

	err = api.DeleteApp(ctx, d.ID, appID)
	c.emit(sess, "app.delete", appID, err)
	if err != nil {
		return fmt.Errorf("failed to delete app %s: %w", appID, err)
	}
	c.dropLabel(ctx, sdamodels.LabelApp, appID)
	if selected, _ := sess.App(); selected == appID {
		sess.ClearApp()
		c.resetTables(sess, tables.Services)
	}

	if _, _, err := c.ListApps(ctx, sess); err != nil {
		c.logger.ErrorWithError(err, "failed to refresh apps after delete")
	}
	return nil
}

// resolveManifest returns the yaml to deploy: the inline text when given, otherwise the
// selected stored manifest
func (c *Console) resolveManifest(ctx context.Context, sess *session.Session, data, name string) (string, string, error) {
	if data != "" {
		return data, name, nil
	}
	id, err := sess.Manifest()
	if err != nil {
		return "", "", invalid("Please select a yaml file")
	}
	m, err := c.store.Manifests().GetManifest(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("failed to load manifest %s: %w", id, err)
	}
	if name == "" {
		name = m.Name
	}
	return m.Yaml, name, nil
}

// InstallApp deploys a manifest to the selected device and labels the new app with name
func (c *Console) InstallApp(ctx context.Context, sess *session.Session, data, name string) (string, error) {
	d, err := sess.Device()
	if err != nil {
		return "", err
	}
	manifest, name, err := c.resolveManifest(ctx, sess, data, name)
	if err != nil {
		return "", err
	}
	api, err := c.manager(sess)
	if err != nil {
		return "", err
	}
	done, err := sess.Begin("app.install")
	if err != nil {
		return "", err
	}
	defer done()

	id, err := api.DeployApp(ctx, d.ID, manifest)
	c.emit(sess, "app.install", d.ID, err)
	if err != nil {
		return "", fmt.Errorf("failed to deploy to device %s: %w", d.ID, err)
	}
	c.setLabel(ctx, sdamodels.LabelApp, id, name)
	return id, nil
}

// AppLifecycle starts, stops or updates the selected app
func (c *Console) AppLifecycle(ctx context.Context, sess *session.Session, action string) error {
	d, err := sess.Device()
	if err != nil {
		return err
	}
	appID, err := sess.App()
	if err != nil {
		return err
	}
	api, err := c.manager(sess)
	if err != nil {
		return err
	}
	done, err := sess.Begin("app." + action)
	if err != nil {
		return err
	}
	defer done()

	switch action {
	case ActionStart:
		err = api.StartApp(ctx, d.ID, appID)
	case ActionStop:
		err = api.StopApp(ctx, d.ID, appID)
	case ActionUpdate:
		err = api.UpdateApp(ctx, d.ID, appID)
	default:
		return invalid(fmt.Sprintf("unknown app action %q", action))
	}
	c.emit(sess, "app."+action, appID, err)
	if err != nil {
		return fmt.Errorf("failed to %s app %s: %w", action, appID, err)
	}
	return nil
}

// AppYaml returns the selected app's description as YAML text ready for editing
func (c *Console) AppYaml(ctx context.Context, sess *session.Session) (string, error) {
	d, err := sess.Device()
	if err != nil {
		return "", err
	}
	appID, err := sess.App()
	if err != nil {
		return "", err
	}
	api, err := c.manager(sess)
	if err != nil {
		return "", err
	}

	info, err := api.GetApp(ctx, d.ID, appID)
	if err != nil {
		return "", fmt.Errorf("failed to get app %s: %w", appID, err)
	}
	return descriptionText(info.Description)
}

func descriptionText(desc interface{}) (string, error) {
	switch v := desc.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	out, err := yaml.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("failed to render app description: %w", err)
	}
	return string(out), nil
}

// UpdateAppYaml replaces the selected app's manifest
func (c *Console) UpdateAppYaml(ctx context.Context, sess *session.Session, data string) error {
	if data == "" {
		return invalid("Please input a yaml file")
	}
	d, err := sess.Device()
	if err != nil {
		return err
	}
	appID, err := sess.App()
	if err != nil {
		return err
	}
	api, err := c.manager(sess)
	if err != nil {
		return err
	}
	done, err := sess.Begin("app.yaml")
	if err != nil {
		return err
	}
	defer done()

	err = api.UpdateAppInfo(ctx, d.ID, appID, data)
	c.emit(sess, "app.yaml", appID, err)
	if err != nil {
		return fmt.Errorf("failed to update app %s: %w", appID, err)
	}
	return nil
}

type AppListResponse struct {
	Device string          `json:"device"`
	Apps   []sdamodels.App `json:"apps"`
}

func (c *AppController) ListApps(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	d, apps, err := c.console.ListApps(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, AppListResponse{Device: d.Display(), Apps: apps})
}

type SelectAppRequest struct {
	ID string `json:"id" binding:"required"`
}

func (c *AppController) SelectApp(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req SelectAppRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	info, err := c.console.SelectApp(ctx.Request.Context(), sess, req.ID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, info)
}

func (c *AppController) DeleteApp(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	appID, err := sess.App()
	if err == nil {
		err = c.console.DeleteApp(ctx.Request.Context(), sess, appID)
	}
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, nil)
}

// DeployRequest carries an inline manifest; with empty data the selected stored manifest is used
type DeployRequest struct {
	Data string `json:"data"`
	Name string `json:"name"`
}

type DeployResponse struct {
	ID string `json:"id"`
}

func (c *AppController) InstallApp(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req DeployRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	id, err := c.console.InstallApp(ctx.Request.Context(), sess, req.Data, req.Name)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, DeployResponse{ID: id})
}

func (c *AppController) lifecycle(action string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess, ok := sessionOf(ctx, c.logger)
		if !ok {
			return
		}
		if err := c.console.AppLifecycle(ctx.Request.Context(), sess, action); err != nil {
			respondError(ctx, c.logger, err)
			return
		}
		respondOK(ctx, nil)
	}
}

type YamlText struct {
	Data string `json:"data"`
}

func (c *AppController) GetAppYaml(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	text, err := c.console.AppYaml(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, YamlText{Data: text})
}

func (c *AppController) UpdateAppYaml(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req YamlText
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	if err := c.console.UpdateAppYaml(ctx.Request.Context(), sess, req.Data); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, nil)
}
