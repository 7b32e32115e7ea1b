package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	membership "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Membership"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestStoreCreateRunsInit(t *testing.T) {
	store := NewStore(time.Hour,
		WithDefaultAddress("10.0.0.9"),
		WithInit(func(s *Session) { s.Document.AddTable("device_table", "ID") }),
	)

	sess := store.Create()

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "10.0.0.9", sess.Address())
	assert.Equal(t, []string{"device_table"}, sess.Document.Tables())
	assert.Equal(t, 1, store.Len())
}

func TestStoreGetOrCreate(t *testing.T) {
	store := NewStore(time.Hour)

	first, created := store.GetOrCreate("")
	require.True(t, created)

	again, created := store.GetOrCreate(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)

	_, created = store.GetOrCreate("unknown")
	assert.True(t, created)
	assert.Equal(t, 2, store.Len())
}

func TestStoreExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(time.Minute, WithClock(clock.now))

	sess := store.Create()
	clock.t = clock.t.Add(30 * time.Second)
	_, ok := store.Get(sess.ID)
	require.True(t, ok)

	// Get refreshed the expiry
	clock.t = clock.t.Add(45 * time.Second)
	_, ok = store.Get(sess.ID)
	require.True(t, ok)

	clock.t = clock.t.Add(2 * time.Minute)
	_, ok = store.Get(sess.ID)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStoreSweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := NewStore(time.Minute, WithClock(clock.now))
	store.Create()
	store.Create()

	clock.t = clock.t.Add(time.Hour)
	fresh := store.Create()

	assert.Equal(t, 2, store.Sweep())
	_, ok := store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSelections(t *testing.T) {
	sess := NewStore(time.Hour).Create()

	_, err := sess.Device()
	assert.ErrorIs(t, err, ErrNotSelected)
	_, err = sess.App()
	assert.ErrorIs(t, err, ErrNotSelected)
	_, err = sess.Group()
	assert.ErrorIs(t, err, ErrNotSelected)
	_, err = sess.Manifest()
	assert.ErrorIs(t, err, ErrNotSelected)

	sess.SelectDevice(sdamodels.Device{ID: "d1", Host: "h", Port: 1})
	sess.SelectApp("app-1")
	sess.SelectGroup(sdamodels.Group{ID: "g1", Name: "lab", Members: []string{"d1"}})

	d, err := sess.Device()
	require.NoError(t, err)
	assert.Equal(t, "d1", d.ID)
	app, _ := sess.App()
	assert.Equal(t, "app-1", app)

	// selecting another device drops the app
	sess.SelectDevice(sdamodels.Device{ID: "d2"})
	_, err = sess.App()
	assert.ErrorIs(t, err, ErrNotSelected)

	g, _ := sess.Group()
	g.Members[0] = "mutated"
	g2, _ := sess.Group()
	assert.Equal(t, []string{"d1"}, g2.Members)
}

func TestSetAddressResetsSelections(t *testing.T) {
	sess := NewStore(time.Hour).Create()
	sess.SetAddress("10.0.0.1")
	sess.SelectDevice(sdamodels.Device{ID: "d1"})
	sess.SelectGroup(sdamodels.Group{ID: "g1"})
	sess.OpenEditor(&Editor{Mode: ModeCreate, Partition: membership.Seed(nil, nil)})

	sess.SetAddress("10.0.0.1")
	_, err := sess.Device()
	assert.NoError(t, err)

	sess.SetAddress("10.0.0.2")
	_, err = sess.Device()
	assert.ErrorIs(t, err, ErrNotSelected)
	_, err = sess.Group()
	assert.ErrorIs(t, err, ErrNotSelected)
	_, err = sess.Editor()
	assert.ErrorIs(t, err, ErrNoEditor)
}

func TestEditorLifecycle(t *testing.T) {
	sess := NewStore(time.Hour).Create()

	_, err := sess.Editor()
	require.ErrorIs(t, err, ErrNoEditor)

	p := membership.Seed([]sdamodels.Device{{ID: "1"}, {ID: "2"}}, []string{"2"})
	sess.OpenEditor(&Editor{Mode: ModeMembers, GroupID: "g1", Partition: p})

	ed, err := sess.Editor()
	require.NoError(t, err)
	assert.Equal(t, "g1", ed.GroupID)
	assert.Equal(t, []string{"2"}, ed.Partition.MemberList())

	sess.CloseEditor()
	_, err = sess.Editor()
	assert.ErrorIs(t, err, ErrNoEditor)
}

func TestBeginRefusesDuplicate(t *testing.T) {
	sess := NewStore(time.Hour).Create()

	done, err := sess.Begin("deploy")
	require.NoError(t, err)

	_, err = sess.Begin("deploy")
	assert.ErrorIs(t, err, ErrInFlight)

	other, err := sess.Begin("register")
	require.NoError(t, err)
	other()

	done()
	done()

	again, err := sess.Begin("deploy")
	require.NoError(t, err)
	again()
}

func TestParseEditorMode(t *testing.T) {
	m, err := ParseEditorMode("members")
	require.NoError(t, err)
	assert.Equal(t, ModeMembers, m)

	_, err = ParseEditorMode("")
	assert.Error(t, err)
}
