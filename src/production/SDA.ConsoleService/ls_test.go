package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/controllers"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/middleware"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager/managertest"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	implementation "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Implementation"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
)

// startConsole serves the console on a test server; its sessions start without a manager address
func startConsole(t *testing.T) string {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	factory := manager.NewFactory(manager.Settings{ManagerPort: 48099, AgentPort: 48098, Timeout: 5 * time.Second}, log)
	console := controllers.NewConsole(factory, implementation.NewMemoryStore(), nil, log)
	sessions := session.NewStore(time.Hour, session.WithInit(console.InitSession))

	r := gin.New()
	controllers.RegisterRoutes(r, console, middleware.NewSessionMiddleware(sessions, middleware.DefaultConfig()), log)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func runList(t *testing.T, server, what string, opts listOptions) (string, error) {
	client, err := newConsoleClient(server, 5*time.Second)
	require.NoError(t, err)
	var out bytes.Buffer
	err = list(context.Background(), &out, client, what, opts)
	return out.String(), err
}

func TestListDevices(t *testing.T) {
	fake := managertest.NewServer(t)
	fake.AddAgent(sdamodels.Device{ID: "a1", Host: "10.0.0.1", Port: 48098})
	fake.AddAgent(sdamodels.Device{ID: "a2", Host: "10.0.0.2", Port: 48098})
	server := startConsole(t)

	out, err := runList(t, server, "devices", listOptions{manager: fake.Address()})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "No."))
	assert.Contains(t, lines[1], "10.0.0.1")
	assert.Contains(t, lines[2], "10.0.0.2")
}

func TestListAppsSelectsDeviceInOneSession(t *testing.T) {
	fake := managertest.NewServer(t)
	fake.AddAgent(sdamodels.Device{ID: "a1", Host: "10.0.0.1", Port: 48098, Apps: []string{"app-x"}})
	server := startConsole(t)

	out, err := runList(t, server, "apps", listOptions{manager: fake.Address(), device: "a1"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "IP: 10.0.0.1, PORT: 48098"))
	assert.Contains(t, out, "app-x")
	assert.Contains(t, out, "running")

	_, err = runList(t, server, "apps", listOptions{manager: fake.Address(), device: "nope"})
	assert.Error(t, err)
}

func TestListGroupMembers(t *testing.T) {
	fake := managertest.NewServer(t)
	fake.AddAgent(sdamodels.Device{ID: "a1", Host: "10.0.0.1", Port: 48098})
	fake.AddAgent(sdamodels.Device{ID: "a2", Host: "10.0.0.2", Port: 48098})
	fake.AddGroup("g1", "a2")
	server := startConsole(t)

	out, err := runList(t, server, "members", listOptions{manager: fake.Address(), group: "g1"})
	require.NoError(t, err)
	assert.Contains(t, out, "10.0.0.2")
	assert.NotContains(t, out, "10.0.0.1")

	_, err = runList(t, server, "members", listOptions{manager: fake.Address()})
	assert.Error(t, err)
}

func TestListWithoutManagerFails(t *testing.T) {
	server := startConsole(t)

	_, err := runList(t, server, "groups", listOptions{})
	assert.Error(t, err)

	_, err = runList(t, server, "tables", listOptions{})
	assert.Error(t, err)
}

func TestListYamlsNeedsNoManager(t *testing.T) {
	server := startConsole(t)

	out, err := runList(t, server, "yamls", listOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "No."))
}
