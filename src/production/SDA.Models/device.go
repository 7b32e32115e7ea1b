package sdamodels

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Device represents a Service Deployment Agent registered with the manager
type Device struct {
	ID     string   `json:"id"`
	Host   string   `json:"host"`
	Port   Port     `json:"port"`
	Apps   []string `json:"apps,omitempty"`
	Status string   `json:"status,omitempty"`
}

// Address returns the host:port form used to reach the agent
func (d Device) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, int(d.Port))
}

// Display returns the label shown above a device's app list
func (d Device) Display() string {
	return fmt.Sprintf("IP: %s, PORT: %d", d.Host, int(d.Port))
}

// Port accepts both JSON numbers and numeric strings; the manager stores ports as strings.
type Port int

func (p *Port) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Port(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("port must be a number or numeric string: %w", err)
	}
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", s, err)
	}
	*p = Port(n)
	return nil
}

// DeviceIDs returns the identifiers of devices in order
func DeviceIDs(devices []Device) []string {
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	return ids
}
