package sdamodels

// App is an application installed on a device
type App struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Services int    `json:"services"`
	State    string `json:"state"`
}

// Service is one container of an installed application
type Service struct {
	Name     string      `json:"name"`
	State    interface{} `json:"state"`
	ExitCode interface{} `json:"exitcode"`
}

// AppInfo is the manager's view of one installed application
type AppInfo struct {
	ID          string      `json:"id,omitempty"`
	State       string      `json:"state"`
	Services    []Service   `json:"services"`
	Description interface{} `json:"description,omitempty"`
}

// MemberResponse is one member's outcome of a group fan-out request
type MemberResponse struct {
	ID      string `json:"id"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}
