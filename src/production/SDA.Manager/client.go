// Package manager is the typed client of the SDA Manager REST API and of the device agents.
package manager

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	accessor "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Accessor"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

const (
	apiBase    = "/api/v1"
	agentsPath = apiBase + "/agents"
	groupsPath = apiBase + "/groups"

	registerPath   = apiBase + "/register"
	unregisterPath = apiBase + "/unregister"
)

// API is what the console needs from the SDA Manager
type API interface {
	GetAgents(ctx context.Context) ([]sdamodels.Device, error)
	GetAgent(ctx context.Context, agentID string) (*sdamodels.Device, error)
	GetApp(ctx context.Context, agentID, appID string) (*sdamodels.AppInfo, error)
	DeployApp(ctx context.Context, agentID, manifest string) (string, error)
	UpdateAppInfo(ctx context.Context, agentID, appID, manifest string) error
	DeleteApp(ctx context.Context, agentID, appID string) error
	StartApp(ctx context.Context, agentID, appID string) error
	StopApp(ctx context.Context, agentID, appID string) error
	UpdateApp(ctx context.Context, agentID, appID string) error

	GetGroups(ctx context.Context) ([]sdamodels.Group, error)
	GetGroup(ctx context.Context, groupID string) (*sdamodels.Group, error)
	CreateGroup(ctx context.Context) (string, error)
	JoinGroup(ctx context.Context, groupID string, agents []string) error
	LeaveGroup(ctx context.Context, groupID string, agents []string) error
	DeleteGroup(ctx context.Context, groupID string) error
	DeployToGroup(ctx context.Context, groupID, manifest string) (string, error)

	RegisterDevice(ctx context.Context, deviceHost string, interval int) error
	UnregisterDevice(ctx context.Context, device sdamodels.Device) error
}

var _ API = (*Client)(nil)

// Factory builds an API bound to one manager address
type Factory func(address string) API

// Settings holds the ports and timeout used to reach the manager and the agents
type Settings struct {
	ManagerPort int
	AgentPort   int
	Timeout     time.Duration
}

// Client talks to one SDA Manager
type Client struct {
	address  string
	settings Settings
	manager  *accessor.Client
	logger   *logger.Logger
}

// NewFactory returns a Factory producing Clients with the given settings
func NewFactory(settings Settings, log *logger.Logger) Factory {
	return func(address string) API {
		return NewClient(address, settings, log)
	}
}

// NewClient creates a client for the manager at address. An address without a port
// gets the configured manager port.
func NewClient(address string, settings Settings, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		address:  address,
		settings: settings,
		manager: accessor.New("http://"+withPort(address, settings.ManagerPort),
			accessor.WithTimeout(settings.Timeout),
			accessor.WithDiscriminator(Discriminator),
			accessor.WithLogger(log),
		),
		logger: log,
	}
}

// Address returns the manager address the client was built for
func (c *Client) Address() string {
	return c.address
}

// GetAgents lists every registered agent
func (c *Client) GetAgents(ctx context.Context) ([]sdamodels.Device, error) {
	var out struct {
		Agents []sdamodels.Device `json:"agents"`
	}
	if err := c.manager.Decode(ctx, http.MethodGet, agentsPath, nil, &out); err != nil {
		return nil, err
	}
	if out.Agents == nil {
		out.Agents = []sdamodels.Device{}
	}
	return out.Agents, nil
}

// GetAgent returns one agent including its installed app ids
func (c *Client) GetAgent(ctx context.Context, agentID string) (*sdamodels.Device, error) {
	var out sdamodels.Device
	if err := c.manager.Decode(ctx, http.MethodGet, agentPath(agentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetApp returns the state, services and description of an installed app
func (c *Client) GetApp(ctx context.Context, agentID, appID string) (*sdamodels.AppInfo, error) {
	var out sdamodels.AppInfo
	if err := c.manager.Decode(ctx, http.MethodGet, appPath(agentID, appID), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = appID
	}
	return &out, nil
}

// DeployApp sends the manifest verbatim and returns the new app id
func (c *Client) DeployApp(ctx context.Context, agentID, manifest string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.manager.Decode(ctx, http.MethodPost, agentPath(agentID)+"/deploy", manifest, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateAppInfo replaces the stored manifest of an installed app
func (c *Client) UpdateAppInfo(ctx context.Context, agentID, appID, manifest string) error {
	_, err := c.manager.Call(ctx, http.MethodPost, appPath(agentID, appID), manifest)
	return err
}

func (c *Client) DeleteApp(ctx context.Context, agentID, appID string) error {
	_, err := c.manager.Call(ctx, http.MethodDelete, appPath(agentID, appID), nil)
	return err
}

func (c *Client) StartApp(ctx context.Context, agentID, appID string) error {
	return c.appAction(ctx, agentID, appID, "start")
}

func (c *Client) StopApp(ctx context.Context, agentID, appID string) error {
	return c.appAction(ctx, agentID, appID, "stop")
}

func (c *Client) UpdateApp(ctx context.Context, agentID, appID string) error {
	return c.appAction(ctx, agentID, appID, "update")
}

func (c *Client) appAction(ctx context.Context, agentID, appID, action string) error {
	_, err := c.manager.Call(ctx, http.MethodPost, appPath(agentID, appID)+"/"+action, nil)
	return err
}

// GetGroups lists every group with its members
func (c *Client) GetGroups(ctx context.Context) ([]sdamodels.Group, error) {
	var out struct {
		Groups []sdamodels.Group `json:"groups"`
	}
	if err := c.manager.Decode(ctx, http.MethodGet, groupsPath, nil, &out); err != nil {
		return nil, err
	}
	if out.Groups == nil {
		out.Groups = []sdamodels.Group{}
	}
	return out.Groups, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (*sdamodels.Group, error) {
	var out sdamodels.Group
	if err := c.manager.Decode(ctx, http.MethodGet, groupPath(groupID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGroup creates an empty group and returns its id
func (c *Client) CreateGroup(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.manager.Decode(ctx, http.MethodPost, groupsPath+"/create", nil, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &accessor.TransportError{Method: http.MethodPost, Path: groupsPath + "/create", Err: fmt.Errorf("manager returned no group id")}
	}
	return out.ID, nil
}

func (c *Client) JoinGroup(ctx context.Context, groupID string, agents []string) error {
	_, err := c.manager.Call(ctx, http.MethodPost, groupPath(groupID)+"/join", sdamodels.MemberList{Agents: agents})
	return err
}

func (c *Client) LeaveGroup(ctx context.Context, groupID string, agents []string) error {
	_, err := c.manager.Call(ctx, http.MethodPost, groupPath(groupID)+"/leave", sdamodels.MemberList{Agents: agents})
	return err
}

func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	_, err := c.manager.Call(ctx, http.MethodDelete, groupPath(groupID), nil)
	return err
}

// DeployToGroup deploys the manifest to every member. A partial failure is an
// application error; MemberResponses lists the per-member outcome.
func (c *Client) DeployToGroup(ctx context.Context, groupID, manifest string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.manager.Decode(ctx, http.MethodPost, groupPath(groupID)+"/deploy", manifest, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// RegisterDevice asks the agent at deviceHost to register with this manager
func (c *Client) RegisterDevice(ctx context.Context, deviceHost string, interval int) error {
	agent := accessor.New("http://"+withPort(deviceHost, c.settings.AgentPort),
		accessor.WithTimeout(c.settings.Timeout),
		accessor.WithLogger(c.logger),
	)

	body := map[string]interface{}{
		"ip": hostOnly(c.address),
		"healthCheck": map[string]string{
			"interval": strconv.Itoa(interval),
		},
	}

	_, err := agent.Call(ctx, http.MethodPost, registerPath, body)
	return err
}

// UnregisterDevice asks the agent itself to leave the manager
func (c *Client) UnregisterDevice(ctx context.Context, device sdamodels.Device) error {
	agent := accessor.New("http://"+device.Address(),
		accessor.WithTimeout(c.settings.Timeout),
		accessor.WithLogger(c.logger),
	)
	_, err := agent.Call(ctx, http.MethodPost, unregisterPath, nil)
	return err
}

func agentPath(agentID string) string {
	return agentsPath + "/" + agentID
}

func appPath(agentID, appID string) string {
	return agentPath(agentID) + "/apps/" + appID
}

func groupPath(groupID string) string {
	return groupsPath + "/" + groupID
}

// withPort appends port when address carries none
func withPort(address string, port int) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, strconv.Itoa(port))
}

func hostOnly(address string) string {
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}
	return address
}
