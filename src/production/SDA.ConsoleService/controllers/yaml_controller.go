package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
)

// YamlController handles the stored deployment manifests
type YamlController struct {
	console *Console
	logger  *logger.Logger
}

// NewYamlController creates a new manifest controller
func NewYamlController(console *Console, logger *logger.Logger) *YamlController {
	return &YamlController{console: console, logger: logger}
}

// RegisterRoutes registers the manifest routes
func (c *YamlController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/yaml", c.ListManifests)
	router.POST("/yaml", c.CreateManifest)
}

// ListManifests renders yaml_table from the console store
func (c *Console) ListManifests(ctx context.Context, sess *session.Session) ([]sdamodels.Manifest, error) {
	if err := sess.Document.Clear(tables.Yamls); err != nil {
		return nil, err
	}
	manifests, err := c.store.Manifests().ListManifests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	if err := view.Render(sess.Document, tables.Yamls, manifests, tables.ManifestRow); err != nil {
		return nil, err
	}
	return manifests, nil
}

// CreateManifest stores a manifest and refreshes yaml_table
func (c *Console) CreateManifest(ctx context.Context, sess *session.Session, m sdamodels.Manifest) (*sdamodels.Manifest, error) {
	if strings.TrimSpace(m.Name) == "" {
		return nil, invalid("Please input a yaml name")
	}
	if strings.TrimSpace(m.Yaml) == "" {
		return nil, invalid("Please input a yaml file")
	}

	created, err := c.store.Manifests().CreateManifest(ctx, m)
	c.emit(sess, "yaml.create", m.Name, err)
	if err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}
	if _, err := c.ListManifests(ctx, sess); err != nil {
		c.logger.ErrorWithError(err, "failed to refresh manifests")
	}
	return created, nil
}

// DeleteManifest removes a stored manifest and refreshes yaml_table
func (c *Console) DeleteManifest(ctx context.Context, sess *session.Session, id string) error {
	err := c.store.Manifests().DeleteManifest(ctx, id)
	c.emit(sess, "yaml.delete", id, err)
	if err != nil {
		return fmt.Errorf("failed to delete manifest %s: %w", id, err)
	}
	if selected, _ := sess.Manifest(); selected == id {
		sess.SelectManifest("")
	}
	_, err = c.ListManifests(ctx, sess)
	return err
}

type ManifestListResponse struct {
	Yamls []sdamodels.Manifest `json:"yamls"`
}

func (c *YamlController) ListManifests(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	manifests, err := c.console.ListManifests(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, ManifestListResponse{Yamls: manifests})
}

type CreateManifestRequest struct {
	Img         string `json:"img"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Yaml        string `json:"yaml"`
}

func (c *YamlController) CreateManifest(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req CreateManifestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	m, err := c.console.CreateManifest(ctx.Request.Context(), sess, sdamodels.Manifest{
		Img:         req.Img,
		Name:        req.Name,
		Description: req.Description,
		Yaml:        req.Yaml,
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, m)
}
