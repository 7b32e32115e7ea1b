package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
)

// ViewController exposes the session's rendered tables and forwards row gestures
type ViewController struct {
	logger *logger.Logger
}

// NewViewController creates a new view controller
func NewViewController(logger *logger.Logger) *ViewController {
	return &ViewController{logger: logger}
}

// RegisterRoutes registers the view routes
func (c *ViewController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/view", c.ListTables)
	router.GET("/view/:container", c.GetTable)
	router.POST("/view/:container/:event", c.Dispatch)
}

func (c *ViewController) ListTables(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	respondOK(ctx, gin.H{"tables": sess.Document.Tables()})
}

// GetTable answers a snapshot envelope, or the table markup with ?format=html|text
func (c *ViewController) GetTable(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	containerID := ctx.Param("container")

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch ctx.Query("format") {
	case "html":
		contentType = "text/html; charset=utf-8"
		err = sess.Document.WriteHTML(&buf, containerID)
	case "text":
		contentType = "text/plain; charset=utf-8"
		err = sess.Document.WriteText(&buf, containerID)
	default:
		snap, err := sess.Document.Snapshot(containerID)
		if err != nil {
			respondError(ctx, c.logger, err)
			return
		}
		respondOK(ctx, snap)
		return
	}
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}

type DispatchRequest struct {
	Key string `json:"key" binding:"required"`
}

// Dispatch runs the handler bound to a row gesture and answers the container's new snapshot
func (c *ViewController) Dispatch(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	kind, err := view.ParseEventKind(ctx.Param("event"))
	if err != nil {
		respondBadRequest(ctx, err)
		return
	}
	var req DispatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	containerID := ctx.Param("container")
	if err := sess.Document.Dispatch(ctx.Request.Context(), containerID, kind, req.Key); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	snap, err := sess.Document.Snapshot(containerID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, snap)
}
