package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Config"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	notifier "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Notifier"
	implementation "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Implementation"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/mocks"
	"go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	return &config.Config{
		Manager: config.ManagerConfig{Port: 48099, AgentPort: 48098},
		Store:   config.StoreConfig{Driver: config.StoreMemory},
	}
}

func TestMemoryStoreByDefault(t *testing.T) {
	c := NewContainerWithConfig(testConfig(), logger.NewNop())

	store, err := c.GetStore()
	require.NoError(t, err)
	assert.IsType(t, &implementation.MemoryStore{}, store)

	again, _ := c.GetStore()
	assert.Same(t, store, again)

	require.NoError(t, c.InitializeStore(context.Background()))
}

func TestPublisherWithoutBrokerIsNop(t *testing.T) {
	c := NewContainerWithConfig(testConfig(), logger.NewNop())

	assert.Equal(t, notifier.Nop{}, c.GetPublisher())
}

func TestManagerFactoryIsCached(t *testing.T) {
	c := NewContainerWithConfig(testConfig(), logger.NewNop())

	f := c.GetManagerFactory()
	require.NotNil(t, f)
	assert.NotNil(t, f("10.0.0.1"))
}

func TestHealthCheckReportsStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	c := NewContainerWithConfig(testConfig(), logger.NewNop())
	c.SetStore(store)

	status := c.HealthCheck(context.Background())

	assert.Equal(t, "degraded", status["status"])
	checks := status["checks"].(map[string]interface{})
	assert.Equal(t, "error", checks["store"].(map[string]interface{})["status"])
	assert.Equal(t, "disabled", checks["events"].(map[string]interface{})["status"])
}

func TestShutdownRunsCleanupInReverse(t *testing.T) {
	c := NewContainerWithConfig(testConfig(), logger.NewNop())

	var order []int
	c.AddCleanupFunc(func() error { order = append(order, 1); return nil })
	c.AddCleanupFunc(func() error { order = append(order, 2); return errors.New("ignored") })

	require.NoError(t, c.Shutdown(context.Background()))
	assert.Equal(t, []int{2, 1}, order)

	// cleanup runs once
	require.NoError(t, c.Shutdown(context.Background()))
	assert.Equal(t, []int{2, 1}, order)
}
