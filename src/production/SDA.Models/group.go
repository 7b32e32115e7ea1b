package sdamodels

// Group is a named set of devices. The manager keeps id and members; the name is a console label.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"groupname"`
	Members []string `json:"members"`
}

// MemberList is the body of join/leave requests
type MemberList struct {
	Agents []string `json:"agents"`
}
