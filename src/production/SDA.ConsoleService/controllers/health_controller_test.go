package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager/managertest"
)

type staticChecker struct {
	status string
}

func (c staticChecker) HealthCheck(context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status": c.status,
		"checks": map[string]interface{}{"store": map[string]interface{}{"status": "ok"}},
	}
}

func healthRouter(checker HealthChecker, address string) *gin.Engine {
	log := logger.NewNop()
	factory := manager.NewFactory(manager.Settings{ManagerPort: 48099, AgentPort: 48098, Timeout: 2 * time.Second}, log)
	r := gin.New()
	NewHealthController(checker, factory, address, log).RegisterRoutes(r)
	return r
}

func getHealth(t *testing.T, r *gin.Engine, path string) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthLive(t *testing.T) {
	code, body := getHealth(t, healthRouter(staticChecker{status: "degraded"}, ""), "/health/live")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthReadyProbesManager(t *testing.T) {
	fake := managertest.NewServer(t)
	r := healthRouter(staticChecker{status: "ok"}, fake.Address())

	code, body := getHealth(t, r, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["manager"].(map[string]interface{})["status"])
	assert.Contains(t, fake.Requests(), "GET /api/v1/agents")

	fake.FailWith(http.StatusInternalServerError)
	code, body = getHealth(t, r, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
}

func TestHealthReadyWithoutManager(t *testing.T) {
	code, body := getHealth(t, healthRouter(staticChecker{status: "degraded"}, ""), "/health/ready")

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.NotContains(t, body["checks"], "manager")
}
