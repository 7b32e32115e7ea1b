// Package session holds the per-operator console state: the selected manager, device, app,
// group and manifest, the rendered tables and the group editor.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	membership "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Membership"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
)

var (
	// ErrInFlight is returned by Begin while the same action is still running
	ErrInFlight = errors.New("action already in progress")
	// ErrNoEditor is returned when no group editor is open
	ErrNoEditor = errors.New("group editor is not open")
	// ErrNotSelected is returned when an action needs a selection that was not made
	ErrNotSelected = errors.New("nothing selected")
)

// EditorMode tells what saving the group editor does
type EditorMode string

const (
	ModeCreate  EditorMode = "create"
	ModeMembers EditorMode = "members"
)

// ParseEditorMode accepts "create" and "members"
func ParseEditorMode(s string) (EditorMode, error) {
	switch m := EditorMode(s); m {
	case ModeCreate, ModeMembers:
		return m, nil
	}
	return "", fmt.Errorf("unknown editor mode %q", s)
}

// Editor is an open group dialog. It is owned by the session until saved or cancelled.
type Editor struct {
	Mode      EditorMode
	GroupID   string
	Partition *membership.Partition
}

// Session is one operator's console state
type Session struct {
	ID       string
	Document *view.Document

	mu       sync.Mutex
	address  string
	device   *sdamodels.Device
	appID    string
	group    *sdamodels.Group
	manifest string
	editor   *Editor
	inflight map[string]struct{}
	lastSeen time.Time
}

func newSession(id, address string, now time.Time) *Session {
	return &Session{
		ID:       id,
		Document: view.NewDocument(),
		address:  address,
		inflight: make(map[string]struct{}),
		lastSeen: now,
	}
}

// Address returns the manager address, empty when unset
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// SetAddress changes the manager address and drops every selection made against the old one
func (s *Session) SetAddress(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == address {
		return
	}
	s.address = address
	s.device, s.appID, s.group, s.editor = nil, "", nil, nil
}

// SelectDevice remembers the device the app views act on
func (s *Session) SelectDevice(d sdamodels.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = &d
	s.appID = ""
}

// Device returns the selected device
func (s *Session) Device() (sdamodels.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return sdamodels.Device{}, fmt.Errorf("%w: device", ErrNotSelected)
	}
	return *s.device, nil
}

// ClearDevice forgets the selected device and app
func (s *Session) ClearDevice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device, s.appID = nil, ""
}

func (s *Session) SelectApp(appID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appID = appID
}

// App returns the selected app id
func (s *Session) App() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appID == "" {
		return "", fmt.Errorf("%w: app", ErrNotSelected)
	}
	return s.appID, nil
}

func (s *Session) ClearApp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appID = ""
}

func (s *Session) SelectGroup(g sdamodels.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.Members = append([]string(nil), g.Members...)
	s.group = &g
}

// Group returns the selected group
func (s *Session) Group() (sdamodels.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group == nil {
		return sdamodels.Group{}, fmt.Errorf("%w: group", ErrNotSelected)
	}
	g := *s.group
	g.Members = append([]string(nil), g.Members...)
	return g, nil
}

func (s *Session) ClearGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group = nil
}

func (s *Session) SelectManifest(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = id
}

// Manifest returns the selected manifest id
func (s *Session) Manifest() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifest == "" {
		return "", fmt.Errorf("%w: manifest", ErrNotSelected)
	}
	return s.manifest, nil
}

// OpenEditor replaces any open editor
func (s *Session) OpenEditor(e *Editor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = e
}

// Editor returns the open editor
func (s *Session) Editor() (*Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil, ErrNoEditor
	}
	return s.editor, nil
}

// CloseEditor discards the editor and its partition
func (s *Session) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = nil
}

// Begin marks action as running. The returned func ends it and must be called once.
func (s *Session) Begin(action string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[action]; busy {
		return nil, fmt.Errorf("%w: %s", ErrInFlight, action)
	}
	s.inflight[action] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.inflight, action)
			s.mu.Unlock()
		})
	}, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
