package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/spf13/cobra"
	accessor "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Accessor"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/controllers"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/tables"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
)

type listOptions struct {
	server  string
	manager string
	device  string
	group   string
	timeout time.Duration
}

var lsopts listOptions

var lscmd = &cobra.Command{
	Use:       "ls <devices|groups|yamls|apps|members>",
	Short:     "lists a console table from a running console",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"devices", "groups", "yamls", "apps", "members"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newConsoleClient(lsopts.server, lsopts.timeout)
		if err != nil {
			return err
		}
		return list(cmd.Context(), cmd.OutOrStdout(), client, args[0], lsopts)
	},
}

var _ = func() (ret bool) {
	lscmd.PersistentFlags().StringVar(&lsopts.server, "server", "http://localhost:5000", `base url of a running console`)
	lscmd.PersistentFlags().StringVar(&lsopts.manager, "manager", "", `SDA Manager address to use instead of the console default`)
	lscmd.PersistentFlags().StringVar(&lsopts.device, "device", "", `device id whose apps are listed (ls apps)`)
	lscmd.PersistentFlags().StringVar(&lsopts.group, "group", "", `group id whose devices are listed (ls members)`)
	lscmd.PersistentFlags().DurationVar(&lsopts.timeout, "timeout", 30*time.Second, `per-request timeout`)

	return
}()

// newConsoleClient keeps the session cookie so every call of one run shares a session
func newConsoleClient(server string, timeout time.Duration) (*accessor.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return accessor.New(strings.TrimRight(server, "/")+controllers.BasePath,
		accessor.WithHTTPClient(&http.Client{Jar: jar}),
		accessor.WithTimeout(timeout),
		accessor.WithDiscriminator(accessor.EnvelopeDiscriminator),
	), nil
}

// list fetches one table through the console and writes it as aligned text
func list(ctx context.Context, w io.Writer, client *accessor.Client, what string, opts listOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.manager != "" {
		if _, err := client.Call(ctx, http.MethodPost, "/address", controllers.AddressRequest{IP: opts.manager}); err != nil {
			return fmt.Errorf("failed to set manager address: %w", err)
		}
	}

	doc := view.NewDocument()
	tables.Declare(doc)

	var (
		containerID string
		err         error
	)
	switch what {
	case "devices":
		containerID = tables.Devices
		var out controllers.DeviceListResponse
		if err = client.Decode(ctx, http.MethodGet, "/devices", nil, &out); err == nil {
			err = view.Render(doc, containerID, out.Devices, tables.DeviceRow)
		}
	case "groups":
		containerID = tables.Groups
		var out controllers.GroupListResponse
		if err = client.Decode(ctx, http.MethodGet, "/groups", nil, &out); err == nil {
			err = view.Render(doc, containerID, out.Groups, tables.GroupRow)
		}
	case "yamls":
		containerID = tables.Yamls
		var out controllers.ManifestListResponse
		if err = client.Decode(ctx, http.MethodGet, "/yaml", nil, &out); err == nil {
			err = view.Render(doc, containerID, out.Yamls, tables.ManifestRow)
		}
	case "apps":
		containerID = tables.Apps
		var out controllers.AppListResponse
		if out, err = listApps(ctx, client, opts.device); err == nil {
			fmt.Fprintln(w, out.Device)
			err = view.Render(doc, containerID, out.Apps, tables.AppRow)
		}
	case "members":
		containerID = tables.GroupDevices
		if opts.group == "" {
			return fmt.Errorf("--group is required to list group members")
		}
		var out controllers.GroupResponse
		if err = client.Decode(ctx, http.MethodPost, "/group", controllers.SelectGroupRequest{ID: opts.group}, &out); err == nil {
			err = view.Render(doc, containerID, out.Devices, tables.DeviceRow)
		}
	default:
		return fmt.Errorf("unknown table %q", what)
	}
	if err != nil {
		return err
	}
	return doc.WriteText(w, containerID)
}

func listApps(ctx context.Context, client *accessor.Client, deviceID string) (controllers.AppListResponse, error) {
	var out controllers.AppListResponse
	if deviceID == "" {
		return out, fmt.Errorf("--device is required to list apps")
	}

	var devices controllers.DeviceListResponse
	if err := client.Decode(ctx, http.MethodGet, "/devices", nil, &devices); err != nil {
		return out, err
	}
	var device *sdamodels.Device
	for i := range devices.Devices {
		if devices.Devices[i].ID == deviceID {
			device = &devices.Devices[i]
			break
		}
	}
	if device == nil {
		return out, fmt.Errorf("device %q is not registered", deviceID)
	}

	sel := controllers.SelectDeviceRequest{ID: device.ID, Host: device.Host, Port: device.Port}
	if _, err := client.Call(ctx, http.MethodPost, "/device", sel); err != nil {
		return out, err
	}
	err := client.Decode(ctx, http.MethodGet, "/apps", nil, &out)
	return out, err
}
