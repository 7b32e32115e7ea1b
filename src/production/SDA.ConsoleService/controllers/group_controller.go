package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	membership "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Membership"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
)

// Editor list names accepted by MoveDevice
const (
	ListIncluded = "included"
	ListExcluded = "excluded"
)

// GroupController handles groups and the group editor
type GroupController struct {
	console *Console
	logger  *logger.Logger
}

// NewGroupController creates a new group controller
func NewGroupController(console *Console, logger *logger.Logger) *GroupController {
	return &GroupController{console: console, logger: logger}
}

// RegisterRoutes registers the group routes
func (c *GroupController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/groups", c.ListGroups)
	router.POST("/group", c.SelectGroup)
	router.GET("/group/devices", c.GroupDevices)
	router.GET("/group/editor", c.OpenEditor)
	router.POST("/group/editor/move", c.MoveDevice)
	router.DELETE("/group/editor", c.CloseEditor)
	router.POST("/group/create", c.CreateGroup)
	router.POST("/group/members", c.SaveMembers)
	router.DELETE("/group/delete", c.DeleteGroup)
	router.POST("/group/deploy", c.DeployToGroup)
}

// ListGroups renders group_table with names from the label store
func (c *Console) ListGroups(ctx context.Context, sess *session.Session) ([]sdamodels.Group, error) {
	if err := sess.Document.Clear(tables.Groups); err != nil {
		return nil, err
	}
	api, err := c.manager(sess)
	if err != nil {
		return nil, err
	}
	groups, err := api.GetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	names := c.labels(ctx, sdamodels.LabelGroup)
	for i := range groups {
		if n, ok := names[groups[i].ID]; ok {
			groups[i].Name = n
		} else if groups[i].Name == "" {
			groups[i].Name = groups[i].ID
		}
	}
	if err := view.Render(sess.Document, tables.Groups, groups, tables.GroupRow); err != nil {
		return nil, err
	}
	return groups, nil
}

// memberDevices returns the agents that are members, in agent order. Members the manager
// no longer knows as agents are skipped.
func memberDevices(ctx context.Context, api manager.API, members []string) ([]sdamodels.Device, error) {
	agents, err := api.GetAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	set := make(map[string]struct{}, len(members))
	for _, id := range members {
		set[id] = struct{}{}
	}
	devices := make([]sdamodels.Device, 0, len(members))
	for _, d := range agents {
		if _, ok := set[d.ID]; ok {
			devices = append(devices, d)
		}
	}
	return devices, nil
}

// SelectGroup fetches groupID, selects it and renders its devices. An empty name is
// looked up in the label store.
func (c *Console) SelectGroup(ctx context.Context, sess *session.Session, groupID, name string) (sdamodels.Group, []sdamodels.Device, error) {
	doc := sess.Document
	if err := doc.Clear(tables.GroupDevices); err != nil {
		return sdamodels.Group{}, nil, err
	}
	api, err := c.manager(sess)
	if err != nil {
		return sdamodels.Group{}, nil, err
	}

	g, err := api.GetGroup(ctx, groupID)
	if err != nil {
		return sdamodels.Group{}, nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	if name == "" {
		if l, err := c.store.Labels().GetLabel(ctx, sdamodels.LabelGroup, groupID); err == nil {
			name = l.Name
		}
	}
	g.Name = name
	sess.SelectGroup(*g)

	devices, err := memberDevices(ctx, api, g.Members)
	if err != nil {
		return *g, nil, err
	}
	if err := view.Render(doc, tables.GroupDevices, devices, tables.DeviceRow); err != nil {
		return *g, nil, err
	}
	return *g, devices, nil
}

// GroupDevices refreshes the selected group and its device list
func (c *Console) GroupDevices(ctx context.Context, sess *session.Session) (sdamodels.Group, []sdamodels.Device, error) {
	g, err := sess.Group()
	if err != nil {
		return sdamodels.Group{}, nil, err
	}
	return c.SelectGroup(ctx, sess, g.ID, g.Name)
}

// EditorView is the state of an open group editor
type EditorView struct {
	Mode     session.EditorMode `json:"mode"`
	GroupID  string             `json:"group_id,omitempty"`
	Excluded []sdamodels.Device `json:"excluded"`
	Included []sdamodels.Device `json:"included"`
}

func (c *Console) renderEditor(sess *session.Session, ed *session.Editor) (EditorView, error) {
	excluded, included := ed.Partition.Lists()
	if err := view.Render(sess.Document, tables.Excluded, excluded, tables.DeviceRow); err != nil {
		return EditorView{}, err
	}
	if err := view.Render(sess.Document, tables.Included, included, tables.DeviceRow); err != nil {
		return EditorView{}, err
	}
	return EditorView{Mode: ed.Mode, GroupID: ed.GroupID, Excluded: excluded, Included: included}, nil
}

// OpenEditor seeds a partition from every agent. In members mode the selected group's
// current members start on the included side; in create mode every device starts excluded.
// Any editor already open is discarded first, so a failed open leaves none.
func (c *Console) OpenEditor(ctx context.Context, sess *session.Session, mode session.EditorMode) (EditorView, error) {
	sess.CloseEditor()
	if err := clearTables(sess.Document, tables.Excluded, tables.Included); err != nil {
		return EditorView{}, err
	}

	api, err := c.manager(sess)
	if err != nil {
		return EditorView{}, err
	}

	ed := &session.Editor{Mode: mode}
	var members []string
	if mode == session.ModeMembers {
		g, err := sess.Group()
		if err != nil {
			return EditorView{}, err
		}
		fresh, err := api.GetGroup(ctx, g.ID)
		if err != nil {
			return EditorView{}, fmt.Errorf("failed to get group %s: %w", g.ID, err)
		}
		ed.GroupID = g.ID
		members = fresh.Members
	}

	agents, err := api.GetAgents(ctx)
	if err != nil {
		return EditorView{}, fmt.Errorf("failed to list devices: %w", err)
	}
	ed.Partition = membership.Seed(agents, members)
	sess.OpenEditor(ed)

	return c.renderEditor(sess, ed)
}

// MoveDevice moves a device to the named list of the open editor and re-renders both lists
func (c *Console) MoveDevice(sess *session.Session, deviceID, to string) (EditorView, error) {
	ed, err := sess.Editor()
	if err != nil {
		return EditorView{}, err
	}
	done, err := sess.Begin("group.editor")
	if err != nil {
		return EditorView{}, err
	}
	defer done()

	switch to {
	case ListIncluded:
		err = ed.Partition.MoveToIncluded(deviceID)
	case ListExcluded:
		err = ed.Partition.MoveToExcluded(deviceID)
	default:
		return EditorView{}, invalid(fmt.Sprintf("unknown device list %q", to))
	}
	if err != nil {
		return EditorView{}, err
	}
	return c.renderEditor(sess, ed)
}

// CloseEditor discards the open editor and its lists
func (c *Console) CloseEditor(sess *session.Session) {
	sess.CloseEditor()
	c.resetTables(sess, tables.Excluded, tables.Included)
}

// CreateGroup creates a group from the included devices of a create-mode editor.
// Both checks run before any manager call.
func (c *Console) CreateGroup(ctx context.Context, sess *session.Session, name string) (string, error) {
	ed, err := sess.Editor()
	if err != nil {
		return "", err
	}
	if ed.Mode != session.ModeCreate {
		return "", invalid("The group editor is not creating a group")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("Please input a group name")
	}
	members := ed.Partition.MemberList()
	if len(members) == 0 {
		return "", invalid("Please add at least one device")
	}

	api, err := c.manager(sess)
	if err != nil {
		return "", err
	}
	done, err := sess.Begin("group.create")
	if err != nil {
		return "", err
	}
	defer done()

	id, err := api.CreateGroup(ctx)
	if err == nil {
		if err = api.JoinGroup(ctx, id, members); err != nil {
			// a failed create leaves no group behind
			if derr := api.DeleteGroup(ctx, id); derr != nil {
				c.logger.WithSession(sess.ID, sess.Address()).ErrorWithError(derr, fmt.Sprintf("failed to remove group %s after join failed", id))
			}
		}
	}
	c.emit(sess, "group.create", id, err)
	if err != nil {
		return "", fmt.Errorf("failed to create group %s: %w", name, err)
	}

	c.setLabel(ctx, sdamodels.LabelGroup, id, name)
	c.CloseEditor(sess)
	return id, nil
}

// MembershipChanges lists the devices a members save joined and removed
type MembershipChanges struct {
	Join  []string `json:"join"`
	Leave []string `json:"leave"`
}

// SaveMembers applies a members-mode editor to its group: newly included devices join,
// devices moved out leave.
func (c *Console) SaveMembers(ctx context.Context, sess *session.Session) (MembershipChanges, error) {
	ed, err := sess.Editor()
	if err != nil {
		return MembershipChanges{}, err
	}
	if ed.Mode != session.ModeMembers {
		return MembershipChanges{}, invalid("The group editor is not editing members")
	}
	if len(ed.Partition.MemberList()) == 0 {
		return MembershipChanges{}, invalid("Please add at least one device")
	}

	api, err := c.manager(sess)
	if err != nil {
		return MembershipChanges{}, err
	}
	done, err := sess.Begin("group.members")
	if err != nil {
		return MembershipChanges{}, err
	}
	defer done()

	join, leave := ed.Partition.Changes()
	changes := MembershipChanges{Join: join, Leave: leave}
	if len(join) > 0 {
		err = api.JoinGroup(ctx, ed.GroupID, join)
	}
	if err == nil && len(leave) > 0 {
		err = api.LeaveGroup(ctx, ed.GroupID, leave)
	}
	c.emit(sess, "group.members", ed.GroupID, err)
	if err != nil {
		return changes, fmt.Errorf("failed to update group %s: %w", ed.GroupID, err)
	}

	if g, gerr := sess.Group(); gerr == nil && g.ID == ed.GroupID {
		g.Members = ed.Partition.MemberList()
		sess.SelectGroup(g)
	}
	c.CloseEditor(sess)
	return changes, nil
}

// DeleteGroup deletes the selected group and its label
func (c *Console) DeleteGroup(ctx context.Context, sess *session.Session) error {
	g, err := sess.Group()
	if err != nil {
		return err
	}
	api, err := c.manager(sess)
	if err != nil {
		return err
	}
	done, err := sess.Begin("group.delete")
	if err != nil {
		return err
	}
	defer done()

	err = api.DeleteGroup(ctx, g.ID)
	c.emit(sess, "group.delete", g.ID, err)
	if err != nil {
		return fmt.Errorf("failed to delete group %s: %w", g.ID, err)
	}
	c.dropLabel(ctx, sdamodels.LabelGroup, g.ID)
	sess.ClearGroup()
	c.resetTables(sess, tables.GroupDevices)
	return nil
}

// DeployToGroup deploys a manifest to every member of the selected group. A partial
// failure comes back as an application error listing the failed members.
func (c *Console) DeployToGroup(ctx context.Context, sess *session.Session, data, name string) (string, error) {
	g, err := sess.Group()
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
	done, err := sess.Begin("group.deploy")
	if err != nil {
		return "", err
	}
	defer done()

	id, err := api.DeployToGroup(ctx, g.ID, manifest)
	c.emit(sess, "group.deploy", g.ID, err)
	if err != nil {
		return "", fmt.Errorf("failed to deploy to group %s: %w", g.ID, err)
	}
	c.setLabel(ctx, sdamodels.LabelApp, id, name)
	return id, nil
}

type GroupListResponse struct {
	Groups []sdamodels.Group `json:"groups"`
}

type GroupResponse struct {
	Group   sdamodels.Group    `json:"group"`
	Devices []sdamodels.Device `json:"devices"`
}

func (c *GroupController) ListGroups(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	groups, err := c.console.ListGroups(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, GroupListResponse{Groups: groups})
}

type SelectGroupRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"groupname"`
}

func (c *GroupController) SelectGroup(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req SelectGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	g, devices, err := c.console.SelectGroup(ctx.Request.Context(), sess, req.ID, req.Name)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, GroupResponse{Group: g, Devices: devices})
}

func (c *GroupController) GroupDevices(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	g, devices, err := c.console.GroupDevices(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, GroupResponse{Group: g, Devices: devices})
}

func (c *GroupController) OpenEditor(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	mode, err := session.ParseEditorMode(ctx.DefaultQuery("mode", string(session.ModeCreate)))
	if err != nil {
		respondBadRequest(ctx, err)
		return
	}
	ev, err := c.console.OpenEditor(ctx.Request.Context(), sess, mode)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, ev)
}

type MoveRequest struct {
	ID string `json:"id" binding:"required"`
	To string `json:"to" binding:"required"`
}

func (c *GroupController) MoveDevice(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	ev, err := c.console.MoveDevice(sess, req.ID, req.To)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, ev)
}

func (c *GroupController) CloseEditor(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	c.console.CloseEditor(sess)
	respondOK(ctx, nil)
}

type CreateGroupRequest struct {
	Name string `json:"groupname"`
}

func (c *GroupController) CreateGroup(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	id, err := c.console.CreateGroup(ctx.Request.Context(), sess, req.Name)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, DeployResponse{ID: id})
}

func (c *GroupController) SaveMembers(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	changes, err := c.console.SaveMembers(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, changes)
}

func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	if err := c.console.DeleteGroup(ctx.Request.Context(), sess); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, nil)
}

func (c *GroupController) DeployToGroup(ctx *gin.Context) {
	sess, ok := sessionOf(ctx, c.logger)
	if !ok {
		return
	}
	var req DeployRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}
	id, err := c.console.DeployToGroup(ctx.Request.Context(), sess, req.Data, req.Name)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	respondOK(ctx, DeployResponse{ID: id})
}
