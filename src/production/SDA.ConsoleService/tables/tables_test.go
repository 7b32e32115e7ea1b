package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
)

func TestDeclare(t *testing.T) {
	doc := view.NewDocument()
	Declare(doc)

	assert.Len(t, doc.Tables(), 8)
	snap, err := doc.Snapshot(Apps)
	require.NoError(t, err)
	assert.Equal(t, []string{"No.", "Name", "Services", "State"}, snap.Columns)
}

func TestDeviceRowRoundTrip(t *testing.T) {
	d := sdamodels.Device{ID: "a1", Host: "10.0.0.1", Port: 48098}
	key, cells := DeviceRow(d)

	back, err := DeviceFromRow(view.Row{Index: 1, Key: key, Cells: cells})
	require.NoError(t, err)
	assert.Equal(t, d, back)

	_, err = DeviceFromRow(view.Row{Key: "x", Cells: []string{"h"}})
	assert.Error(t, err)
}

func TestServiceRowFormatsLooseValues(t *testing.T) {
	_, cells := ServiceRow(sdamodels.Service{Name: "web", State: map[string]interface{}{"Status": "running"}, ExitCode: nil})

	assert.Equal(t, "web", cells[0])
	assert.Equal(t, "map[Status:running]", cells[1])
	assert.Equal(t, "", cells[2])
}

func TestGroupRow(t *testing.T) {
	key, cells := GroupRow(sdamodels.Group{ID: "g1", Name: "lab", Members: []string{"a", "b"}})

	assert.Equal(t, "g1", key)
	assert.Equal(t, []string{"lab", "a, b"}, cells)
}
