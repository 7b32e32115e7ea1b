package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	manager "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.Manager/managertest"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	notifier "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Notifier"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/mocks"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
	"go.uber.org/mock/gomock"
)

type mockedStore struct {
	store     *mocks.MockStore
	manifests *mocks.MockManifestRepository
	labels    *mocks.MockLabelRepository
}

func newMockedStore(t *testing.T) mockedStore {
	ctrl := gomock.NewController(t)
	m := mockedStore{
		store:     mocks.NewMockStore(ctrl),
		manifests: mocks.NewMockManifestRepository(ctrl),
		labels:    mocks.NewMockLabelRepository(ctrl),
	}
	m.store.EXPECT().Manifests().Return(m.manifests).AnyTimes()
	m.store.EXPECT().Labels().Return(m.labels).AnyTimes()
	return m
}

func newMockedConsole(t *testing.T, store interfaces.Store, address string) (*Console, *session.Session, *recordingPublisher) {
	log := logger.NewNop()
	pub := &recordingPublisher{}
	factory := manager.NewFactory(manager.Settings{ManagerPort: 48099, AgentPort: 48098, Timeout: 5 * time.Second}, log)
	console := NewConsole(factory, store, pub, log)
	sess := session.NewStore(time.Hour, session.WithDefaultAddress(address), session.WithInit(console.InitSession)).Create()
	return console, sess, pub
}

func TestCreateManifestStoreFailure(t *testing.T) {
	m := newMockedStore(t)
	m.manifests.EXPECT().
		CreateManifest(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("disk full"))
	console, sess, pub := newMockedConsole(t, m.store, "")

	_, err := console.CreateManifest(context.Background(), sess, sdamodels.Manifest{Name: "web", Yaml: "services: {}"})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusFor(err))
	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "yaml.create", events[0].Action)
	assert.Equal(t, notifier.OutcomeError, events[0].Outcome)
}

func TestDeleteManifestMissingIsNotFound(t *testing.T) {
	m := newMockedStore(t)
	m.manifests.EXPECT().DeleteManifest(gomock.Any(), "m9").Return(interfaces.ErrNotFound)
	console, sess, _ := newMockedConsole(t, m.store, "")

	err := console.DeleteManifest(context.Background(), sess, "m9")

	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusFor(err))
}

func TestListManifestsFailureLeavesTableEmpty(t *testing.T) {
	m := newMockedStore(t)
	gomock.InOrder(
		m.manifests.EXPECT().ListManifests(gomock.Any()).Return([]sdamodels.Manifest{{ID: "m1", Name: "web"}}, nil),
		m.manifests.EXPECT().ListManifests(gomock.Any()).Return(nil, errors.New("connection reset")),
	)
	console, sess, _ := newMockedConsole(t, m.store, "")

	_, err := console.ListManifests(context.Background(), sess)
	require.NoError(t, err)
	state, _ := sess.Document.State(tables.Yamls)
	require.Equal(t, view.StatePopulated, state)

	_, err = console.ListManifests(context.Background(), sess)
	assert.Error(t, err)
	state, _ = sess.Document.State(tables.Yamls)
	assert.Equal(t, view.StateEmpty, state)
}

func TestGroupNamesFallBackToIDsWhenLabelsFail(t *testing.T) {
	fake := managertest.NewServer(t)
	fake.AddGroup("g1")
	m := newMockedStore(t)
	m.labels.EXPECT().ListLabels(gomock.Any(), sdamodels.LabelGroup).Return(nil, errors.New("timeout"))
	console, sess, _ := newMockedConsole(t, m.store, fake.Address())

	groups, err := console.ListGroups(context.Background(), sess)

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].Name)
}

func TestCreateGroupLabelsNewGroup(t *testing.T) {
	fake := managertest.NewServer(t)
	fake.AddAgent(sdamodels.Device{ID: "a1", Host: "127.0.0.1", Port: 48098})
	m := newMockedStore(t)
	m.labels.EXPECT().
		SetLabel(gomock.Any(), sdamodels.Label{Kind: sdamodels.LabelGroup, ID: "group-1", Name: "lab"}).
		Return(nil)
	console, sess, _ := newMockedConsole(t, m.store, fake.Address())

	_, err := console.OpenEditor(context.Background(), sess, session.ModeCreate)
	require.NoError(t, err)
	_, err = console.MoveDevice(sess, "a1", ListIncluded)
	require.NoError(t, err)

	id, err := console.CreateGroup(context.Background(), sess, " lab ")

	require.NoError(t, err)
	assert.Equal(t, "group-1", id)
}
