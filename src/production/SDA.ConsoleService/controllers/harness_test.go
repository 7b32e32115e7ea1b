package controllers

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager/managertest"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	notifier "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Notifier"
	implementation "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Implementation"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (p *recordingPublisher) Publish(ev notifier.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Connected() bool { return true }
func (p *recordingPublisher) Close()          {}

func (p *recordingPublisher) Events() []notifier.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notifier.Event(nil), p.events...)
}

// harness drives the console router as one operator against a fake manager
type harness struct {
	t         *testing.T
	fake      *managertest.Server
	store     *implementation.MemoryStore
	publisher *recordingPublisher
	sessions  *session.Store
	console   *Console
	router    *gin.Engine
	sessionID string
	agentPort sdamodels.Port
}

func newHarness(t *testing.T) *harness {
	fake := managertest.NewServer(t)
	log := logger.NewNop()

	h := &harness{
		t:         t,
		fake:      fake,
		store:     implementation.NewMemoryStore(),
		publisher: &recordingPublisher{},
	}
	_, port, err := net.SplitHostPort(fake.Address())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	h.agentPort = sdamodels.Port(p)

	factory := manager.NewFactory(manager.Settings{ManagerPort: 48099, AgentPort: 48098, Timeout: 5 * time.Second}, log)
	h.console = NewConsole(factory, h.store, h.publisher, log)
	h.sessions = session.NewStore(time.Hour,
		session.WithDefaultAddress(fake.Address()),
		session.WithInit(h.console.InitSession),
	)

	h.router = gin.New()
	RegisterRoutes(h.router, h.console, middleware.NewSessionMiddleware(h.sessions, middleware.DefaultConfig()), log)
	return h
}

// agent registers a device on the fake whose agent endpoints are served by the fake itself
func (h *harness) agent(id string, apps ...string) sdamodels.Device {
	d := sdamodels.Device{ID: id, Host: "127.0.0.1", Port: h.agentPort, Apps: apps}
	h.fake.AddAgent(d)
	return d
}

func (h *harness) raw(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, BasePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if h.sessionID != "" {
		req.Header.Set(middleware.SessionHeader, h.sessionID)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if id := w.Header().Get(middleware.SessionHeader); id != "" {
		h.sessionID = id
	}
	return w
}

func (h *harness) do(method, path string, body interface{}) (int, sdamodels.Envelope) {
	w := h.raw(method, path, body)
	var env sdamodels.Envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// ok performs a request that must succeed and decodes its data into out
func (h *harness) ok(method, path string, body, out interface{}) {
	code, env := h.do(method, path, body)
	require.Equal(h.t, http.StatusOK, code, env.Message)
	require.Equal(h.t, sdamodels.CodeSuccess, env.Code)
	if out != nil {
		require.NoError(h.t, json.Unmarshal(env.Data, out))
	}
}

func (h *harness) session() *session.Session {
	if h.sessionID == "" {
		h.do(http.MethodGet, "/address", nil)
	}
	sess, ok := h.sessions.Get(h.sessionID)
	require.True(h.t, ok)
	return sess
}
