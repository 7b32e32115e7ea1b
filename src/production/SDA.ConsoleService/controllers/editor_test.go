package controllers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accessor "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Accessor"
	config "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Config"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	membership "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Membership"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	implementation "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Implementation"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
)

func TestEditorMovesRaceSaves(t *testing.T) {
	h := newHarness(t)
	devices := []sdamodels.Device{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}

	create := h.sessions.Create()
	create.SetAddress("")
	create.OpenEditor(&session.Editor{Mode: session.ModeCreate, Partition: membership.Seed(devices, nil)})

	members := h.sessions.Create()
	members.SetAddress("")
	members.OpenEditor(&session.Editor{Mode: session.ModeMembers, GroupID: "g1", Partition: membership.Seed(devices, []string{"a1"})})

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, sess := range []*session.Session{create, members} {
		wg.Add(2)
		go func(sess *session.Session) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				_, _ = h.console.MoveDevice(sess, "a2", ListIncluded)
				_, _ = h.console.MoveDevice(sess, "a2", ListExcluded)
			}
		}(sess)
		go func(sess *session.Session) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				var err error
				if sess == create {
					_, err = h.console.CreateGroup(ctx, sess, "x")
				} else {
					_, err = h.console.SaveMembers(ctx, sess)
				}
				if err != nil && !errors.Is(err, ErrNoAddress) {
					ae, ok := accessor.AsApplication(err)
					if assert.True(t, ok, err) {
						assert.Equal(t, "Please add at least one device", ae.Message)
					}
				}
			}
		}(sess)
	}
	wg.Wait()

	for _, sess := range []*session.Session{create, members} {
		ed, err := sess.Editor()
		require.NoError(t, err)
		ex, in := ed.Partition.Lists()
		assert.Len(t, append(ex, in...), len(devices))
	}
}

func TestTableResetFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	console := NewConsole(nil, implementation.NewMemoryStore(), nil, log)

	// a session whose tables were never declared
	bare := session.NewStore(time.Hour).Create()

	console.SelectDevice(bare, sdamodels.Device{ID: "d1"})
	console.CloseEditor(bare)

	assert.Contains(t, buf.String(), "failed to clear table")
	assert.Contains(t, buf.String(), view.ErrContainerNotFound.Error())
	assert.Contains(t, buf.String(), bare.ID)
}

func TestOpenEditorWithoutTables(t *testing.T) {
	console := NewConsole(nil, implementation.NewMemoryStore(), nil, logger.NewNop())
	bare := session.NewStore(time.Hour, session.WithDefaultAddress("10.0.0.1")).Create()
	bare.OpenEditor(&session.Editor{Mode: session.ModeCreate, Partition: membership.Seed(nil, nil)})

	_, err := console.OpenEditor(context.Background(), bare, session.ModeCreate)

	assert.ErrorIs(t, err, view.ErrContainerNotFound)
	_, err = bare.Editor()
	assert.ErrorIs(t, err, session.ErrNoEditor)
}
