// Package tables names the console's list views and how each record becomes a row.
package tables

import (
	"fmt"
	"strconv"
	"strings"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
)

// Container ids
const (
	Groups       = "group_table"
	Devices      = "device_table"
	GroupDevices = "group_device_table"
	Excluded     = "not_include_device_table"
	Included     = "include_device_table"
	Apps         = "app_table"
	Services     = "service_table"
	Yamls        = "yaml_table"
)

var columns = []struct {
	id   string
	cols []string
}{
	{Groups, []string{"Name", "Members"}},
	{Devices, []string{"Host", "Port"}},
	{GroupDevices, []string{"Host", "Port"}},
	{Excluded, []string{"Host", "Port"}},
	{Included, []string{"Host", "Port"}},
	{Apps, []string{"Name", "Services", "State"}},
	{Services, []string{"Name", "State", "Exit Code"}},
	{Yamls, []string{"Image", "Name", "Description"}},
}

// Declare adds every console table to doc
func Declare(doc *view.Document) {
	for _, t := range columns {
		doc.AddTable(t.id, t.cols...)
	}
}

func DeviceRow(d sdamodels.Device) (string, []string) {
	return d.ID, []string{d.Host, strconv.Itoa(int(d.Port))}
}

// DeviceFromRow rebuilds a device from a row produced by DeviceRow
func DeviceFromRow(row view.Row) (sdamodels.Device, error) {
	if len(row.Cells) < 2 {
		return sdamodels.Device{}, fmt.Errorf("device row %q has %d cells", row.Key, len(row.Cells))
	}
	port, err := strconv.Atoi(row.Cells[1])
	if err != nil {
		return sdamodels.Device{}, fmt.Errorf("device row %q: invalid port: %w", row.Key, err)
	}
	return sdamodels.Device{ID: row.Key, Host: row.Cells[0], Port: sdamodels.Port(port)}, nil
}

func GroupRow(g sdamodels.Group) (string, []string) {
	return g.ID, []string{g.Name, strings.Join(g.Members, ", ")}
}

func AppRow(a sdamodels.App) (string, []string) {
	return a.ID, []string{a.Name, strconv.Itoa(a.Services), a.State}
}

func ServiceRow(s sdamodels.Service) (string, []string) {
	return s.Name, []string{s.Name, display(s.State), display(s.ExitCode)}
}

func ManifestRow(m sdamodels.Manifest) (string, []string) {
	return m.ID, []string{m.Img, m.Name, m.Description}
}

func display(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
