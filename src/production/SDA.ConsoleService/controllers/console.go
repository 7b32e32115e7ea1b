// Package controllers serves the /sdamanager surface. Every operation lives on Console so
// HTTP handlers and row gestures share one code path.
package controllers

import (
	"context"
	"errors"
	"fmt"

	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	notifier "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Notifier"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
)

// Console runs operator actions against the manager selected in each session
type Console struct {
	managers  manager.Factory
	store     interfaces.Store
	publisher notifier.Publisher
	logger    *logger.Logger
}

// NewConsole creates a console; a nil publisher drops events
func NewConsole(managers manager.Factory, store interfaces.Store, publisher notifier.Publisher, log *logger.Logger) *Console {
	if publisher == nil {
		publisher = notifier.Nop{}
	}
	return &Console{
		managers:  managers,
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// InitSession declares the console tables on a new session and binds their row gestures
func (c *Console) InitSession(sess *session.Session) {
	doc := sess.Document
	tables.Declare(doc)

	bind := func(containerID string, kind view.EventKind, h view.Handler) {
		if err := doc.BindRowAction(containerID, kind, h); err != nil {
			c.logger.ErrorWithError(err, "failed to bind row action")
		}
	}

	bind(tables.Groups, view.EventClick, func(ctx context.Context, row view.Row) error {
		name := ""
		if len(row.Cells) > 0 {
			name = row.Cells[0]
		}
		_, _, err := c.SelectGroup(ctx, sess, row.Key, name)
		return err
	})
	bind(tables.Devices, view.EventClick, func(_ context.Context, row view.Row) error {
		d, err := tables.DeviceFromRow(row)
		if err != nil {
			return err
		}
		c.SelectDevice(sess, d)
		return nil
	})
	bind(tables.GroupDevices, view.EventClick, func(_ context.Context, row view.Row) error {
		d, err := tables.DeviceFromRow(row)
		if err != nil {
			return err
		}
		c.SelectDevice(sess, d)
		return nil
	})
	bind(tables.Apps, view.EventClick, func(ctx context.Context, row view.Row) error {
		_, err := c.SelectApp(ctx, sess, row.Key)
		return err
	})
	bind(tables.Apps, view.EventDelete, func(ctx context.Context, row view.Row) error {
		return c.DeleteApp(ctx, sess, row.Key)
	})
	bind(tables.Yamls, view.EventClick, func(_ context.Context, row view.Row) error {
		sess.SelectManifest(row.Key)
		return nil
	})
	bind(tables.Yamls, view.EventDelete, func(ctx context.Context, row view.Row) error {
		return c.DeleteManifest(ctx, sess, row.Key)
	})
	bind(tables.Excluded, view.EventDblClick, func(_ context.Context, row view.Row) error {
		_, err := c.MoveDevice(sess, row.Key, ListIncluded)
		return err
	})
	bind(tables.Included, view.EventDblClick, func(_ context.Context, row view.Row) error {
		_, err := c.MoveDevice(sess, row.Key, ListExcluded)
		return err
	})
}

// manager returns a client for the session's manager
func (c *Console) manager(sess *session.Session) (manager.API, error) {
	address := sess.Address()
	if address == "" {
		return nil, ErrNoAddress
	}
	return c.managers(address), nil
}

// emit publishes the outcome of an action; publishing failures are only logged
func (c *Console) emit(sess *session.Session, action, target string, err error) {
	if perr := c.publisher.Publish(notifier.NewEvent(action, target, sess.ID, err)); perr != nil {
		c.logger.WithComponent("notifier").WithSession(sess.ID, sess.Address()).Logger.Warn().Err(perr).Str("action", action).Msg("failed to publish event")
	}
}

// clearTables empties containerIDs, stopping at the first one the document does not have
func clearTables(doc *view.Document, containerIDs ...string) error {
	for _, id := range containerIDs {
		if err := doc.Clear(id); err != nil {
			return err
		}
	}
	return nil
}

// resetTables clears tables after an action that already succeeded, so failures are only logged
func (c *Console) resetTables(sess *session.Session, containerIDs ...string) {
	if err := clearTables(sess.Document, containerIDs...); err != nil {
		c.logger.WithSession(sess.ID, sess.Address()).ErrorWithError(err, "failed to clear table")
	}
}

func (c *Console) setLabel(ctx context.Context, kind sdamodels.LabelKind, id, name string) {
	if name == "" || id == "" {
		return
	}
	if err := c.store.Labels().SetLabel(ctx, sdamodels.Label{Kind: kind, ID: id, Name: name}); err != nil {
		c.logger.ErrorWithError(err, fmt.Sprintf("failed to store %s label", kind))
	}
}

func (c *Console) dropLabel(ctx context.Context, kind sdamodels.LabelKind, id string) {
	err := c.store.Labels().DeleteLabel(ctx, kind, id)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		c.logger.ErrorWithError(err, fmt.Sprintf("failed to delete %s label", kind))
	}
}

func (c *Console) labels(ctx context.Context, kind sdamodels.LabelKind) map[string]string {
	names, err := c.store.Labels().ListLabels(ctx, kind)
	if err != nil {
		c.logger.ErrorWithError(err, fmt.Sprintf("failed to list %s labels", kind))
		return map[string]string{}
	}
	return names
}
