package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	config "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Config"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	notifier "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Notifier"
	implementation "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Implementation"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger

	store     interfaces.Store
	publisher notifier.Publisher
	factory   manager.Factory

	db *sql.DB

	// Mutex for thread-safe access
	mu sync.Mutex

	// Cleanup functions
	cleanupFuncs []func() error
}

// NewContainer loads configuration and creates a container
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return NewContainerWithConfig(cfg, logger.NewLogger(&cfg.Logging)), nil
}

// NewContainerWithConfig creates a container around an already loaded configuration
func NewContainerWithConfig(cfg *config.Config, log *logger.Logger) *Container {
	return &Container{
		config: cfg,
		logger: log,
	}
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetStore returns the manifest/label store selected by STORE_DRIVER, connecting on first use
func (c *Container) GetStore() (interfaces.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		return c.store, nil
	}

	switch c.config.Store.Driver {
	case config.StoreMongo:
		client, err := implementation.ConnectMongo(c.config.Store.MongoURI, 20*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo store: %w", err)
		}
		c.cleanupFuncs = append(c.cleanupFuncs, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
		c.store = implementation.NewMongoStore(client, c.config.Store.DBName)

	case config.StorePostgres:
		pg := c.config.Store.Postgres
		db, err := implementation.ConnectPostgres(c.config.GetDatabaseDSN(), pg.MaxConns, pg.MinConns, 20*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres store: %w", err)
		}
		c.db = db
		c.cleanupFuncs = append(c.cleanupFuncs, db.Close)
		c.store = implementation.NewPostgresStore(db)

	default:
		c.store = implementation.NewMemoryStore()
	}

	c.logger.Logger.Info().Str("driver", c.config.Store.Driver).Msg("Store ready")
	return c.store, nil
}

// InitializeStore creates tables or indexes for the configured store
func (c *Container) InitializeStore(ctx context.Context) error {
	store, err := c.GetStore()
	if err != nil {
		return err
	}

	switch s := store.(type) {
	case *implementation.PostgresStore:
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := implementation.CreateTables(ctx, c.db); err != nil {
			return err
		}
	case *implementation.MongoStore:
		if err := s.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	c.logger.Info("Store initialized successfully")
	return nil
}

// GetPublisher returns the event publisher; without a broker events are dropped
func (c *Container) GetPublisher() notifier.Publisher {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != nil {
		return c.publisher
	}

	if c.config.Events.BrokerHost == "" {
		c.publisher = notifier.Nop{}
		return c.publisher
	}

	pub, err := notifier.Connect(c.config.Events, c.config.GetEventsBrokerURL(), c.logger.WithComponent("notifier"))
	if err != nil {
		c.logger.ErrorWithError(err, "Event publishing disabled")
		c.publisher = notifier.Nop{}
		return c.publisher
	}
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		pub.Close()
		return nil
	})
	c.publisher = pub
	return c.publisher
}

// GetManagerFactory returns the factory building SDA Manager clients per address
func (c *Container) GetManagerFactory() manager.Factory {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.factory == nil {
		c.factory = manager.NewFactory(manager.Settings{
			ManagerPort: c.config.Manager.Port,
			AgentPort:   c.config.Manager.AgentPort,
			Timeout:     c.config.Manager.Timeout,
		}, c.logger.WithComponent("manager"))
	}
	return c.factory
}

// SetStore replaces the store, used by tests
func (c *Container) SetStore(store interfaces.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
}

// SetPublisher replaces the event publisher, used by tests
func (c *Container) SetPublisher(p notifier.Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publisher = p
}

// SetManagerFactory replaces the manager factory, used by tests
func (c *Container) SetManagerFactory(f manager.Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factory = f
}

// HealthCheck reports store and event broker status
func (c *Container) HealthCheck(ctx context.Context) map[string]interface{} {
	checks := make(map[string]interface{})
	overall := "ok"

	store, err := c.GetStore()
	if err == nil {
		err = store.Ping(ctx)
	}
	if err != nil {
		overall = "degraded"
		checks["store"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		checks["store"] = map[string]interface{}{"status": "ok", "driver": c.config.Store.Driver}
	}

	events := "disabled"
	if c.config.Events.BrokerHost != "" {
		events = "ok"
		if !c.GetPublisher().Connected() {
			events = "disconnected"
		}
	}
	checks["events"] = map[string]interface{}{"status": events}

	return map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    overall,
		"checks":    checks,
	}
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	// Execute cleanup functions in reverse order
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
