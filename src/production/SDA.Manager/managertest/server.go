// Package managertest runs an in-memory SDA Manager for tests.
// The same server also answers the agent-side register/unregister endpoints.
package managertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

// Server is a fake manager backed by maps
type Server struct {
	*httptest.Server

	mu sync.Mutex

	agents   []sdamodels.Device
	apps     map[string]map[string]*sdamodels.AppInfo
	groups   map[string]*sdamodels.Group
	order    []string
	requests []string
	bodies   map[string][]string

	failStatus  int
	failRoutes  map[string]int
	failMembers map[string]string
	nextID      int
}

// NewServer starts a fake manager and closes it when the test ends
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		apps:        make(map[string]map[string]*sdamodels.AppInfo),
		groups:      make(map[string]*sdamodels.Group),
		bodies:      make(map[string][]string),
		failRoutes:  make(map[string]int),
		failMembers: make(map[string]string),
	}

	r := mux.NewRouter()
	r.Use(s.record)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/agents", s.listAgents).Methods(http.MethodGet)
	api.HandleFunc("/agents/{agent}", s.getAgent).Methods(http.MethodGet)
	api.HandleFunc("/agents/{agent}/deploy", s.deploy).Methods(http.MethodPost)
	api.HandleFunc("/agents/{agent}/apps/{app}", s.getApp).Methods(http.MethodGet)
	api.HandleFunc("/agents/{agent}/apps/{app}", s.updateAppInfo).Methods(http.MethodPost)
	api.HandleFunc("/agents/{agent}/apps/{app}", s.deleteApp).Methods(http.MethodDelete)
	api.HandleFunc("/agents/{agent}/apps/{app}/{action:start|stop|update}", s.appAction).Methods(http.MethodPost)

	api.HandleFunc("/groups", s.listGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/create", s.createGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{group}", s.getGroup).Methods(http.MethodGet)
	api.HandleFunc("/groups/{group}", s.deleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{group}/{op:join|leave}", s.membership).Methods(http.MethodPost)
	api.HandleFunc("/groups/{group}/deploy", s.groupDeploy).Methods(http.MethodPost)

	api.HandleFunc("/register", s.ok).Methods(http.MethodPost)
	api.HandleFunc("/unregister", s.ok).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Server.Close)
	return s
}

// Address returns host:port of the fake
func (s *Server) Address() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// AddAgent registers a device; its apps get a running state with one service each
func (s *Server) AddAgent(d sdamodels.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Apps = append([]string{}, d.Apps...)
	s.agents = append(s.agents, d)
	s.apps[d.ID] = make(map[string]*sdamodels.AppInfo)
	for _, app := range d.Apps {
		s.apps[d.ID][app] = &sdamodels.AppInfo{
			ID:       app,
			State:    "running",
			Services: []sdamodels.Service{{Name: app + "-svc", State: "running", ExitCode: 0}},
		}
	}
}

// SetAppDescription sets the description returned for an installed app
func (s *Server) SetAppDescription(agentID, appID string, description interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app, ok := s.apps[agentID][appID]; ok {
		app.Description = description
	}
}

// AddGroup stores a group with the given members
func (s *Server) AddGroup(id string, members ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[id] = &sdamodels.Group{ID: id, Members: append([]string{}, members...)}
	s.order = append(s.order, id)
}

// Group returns a copy of a stored group
func (s *Server) Group(id string) (sdamodels.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return sdamodels.Group{}, false
	}
	return sdamodels.Group{ID: g.ID, Members: append([]string{}, g.Members...)}, true
}

// FailWith makes every manager endpoint answer status; zero restores normal behaviour
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// FailRoute makes every endpoint whose path ends with suffix answer status; zero restores it
func (s *Server) FailRoute(suffix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failRoutes, suffix)
		return
	}
	s.failRoutes[suffix] = status
}

// Groups returns the ids of the stored groups, in creation order
func (s *Server) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.order...)
}

// FailMember makes group deployments fail on the given member
func (s *Server) FailMember(agentID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMembers[agentID] = message
}

// Requests returns "METHOD path" for every request received, in order
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Bodies returns the request bodies received on path
func (s *Server) Bodies(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies[path]...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.bodies[r.URL.Path] = append(s.bodies[r.URL.Path], string(body))
		status := s.failStatus
		for suffix, st := range s.failRoutes {
			if strings.HasSuffix(r.URL.Path, suffix) {
				status = st
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listAgents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"agents": s.agents})
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.agents {
		if d.ID == mux.Vars(r)["agent"] {
			d.Apps = s.appIDs(d.ID)
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "agent not found"})
}

func (s *Server) appIDs(agentID string) []string {
	ids := make([]string, 0)
	for _, d := range s.agents {
		if d.ID != agentID {
			continue
		}
		for _, app := range d.Apps {
			if _, ok := s.apps[agentID][app]; ok {
				ids = append(ids, app)
			}
		}
	}
	return ids
}

func (s *Server) install(agentID, appID string) {
	if s.apps[agentID] == nil {
		s.apps[agentID] = make(map[string]*sdamodels.AppInfo)
	}
	s.apps[agentID][appID] = &sdamodels.AppInfo{ID: appID, State: "running", Services: []sdamodels.Service{}}
	for i := range s.agents {
		if s.agents[i].ID == agentID {
			s.agents[i].Apps = append(s.agents[i].Apps, appID)
		}
	}
}

func (s *Server) deploy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agent := mux.Vars(r)["agent"]
	if _, ok := s.apps[agent]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "agent not found"})
		return
	}
	s.nextID++
	id := fmt.Sprintf("app-%d", s.nextID)
	s.install(agent, id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) getApp(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars := mux.Vars(r)
	app, ok := s.apps[vars["agent"]][vars["app"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "app not found"})
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) updateAppInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars := mux.Vars(r)
	if _, ok := s.apps[vars["agent"]][vars["app"]]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "app not found"})
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deleteApp(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars := mux.Vars(r)
	delete(s.apps[vars["agent"]], vars["app"])
	for i := range s.agents {
		if s.agents[i].ID == vars["agent"] {
			s.agents[i].Apps = remove(s.agents[i].Apps, vars["app"])
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) appAction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars := mux.Vars(r)
	app, ok := s.apps[vars["agent"]][vars["app"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "app not found"})
		return
	}
	switch vars["action"] {
	case "start":
		app.State = "running"
	case "stop":
		app.State = "exited"
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listGroups(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make([]sdamodels.Group, 0, len(s.order))
	for _, id := range s.order {
		groups = append(groups, *s.groups[id])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *Server) createGroup(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("group-%d", s.nextID)
	s.groups[id] = &sdamodels.Group{ID: id, Members: []string{}}
	s.order = append(s.order, id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[mux.Vars(r)["group"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "group not found"})
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["group"]
	delete(s.groups, id)
	s.order = remove(s.order, id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) membership(w http.ResponseWriter, r *http.Request) {
	var body sdamodels.MemberList
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Agents == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "agents field is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	vars := mux.Vars(r)
	g, ok := s.groups[vars["group"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "group not found"})
		return
	}
	for _, id := range body.Agents {
		if vars["op"] == "join" {
			if !contains(g.Members, id) {
				g.Members = append(g.Members, id)
			}
			continue
		}
		g.Members = remove(g.Members, id)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) groupDeploy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[mux.Vars(r)["group"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "group not found"})
		return
	}

	s.nextID++
	id := fmt.Sprintf("app-%d", s.nextID)
	responses := make([]sdamodels.MemberResponse, 0, len(g.Members))
	failed := 0
	for _, member := range g.Members {
		if msg, bad := s.failMembers[member]; bad {
			failed++
			responses = append(responses, sdamodels.MemberResponse{ID: member, Code: http.StatusInternalServerError, Message: msg})
			continue
		}
		s.install(member, id)
		responses = append(responses, sdamodels.MemberResponse{ID: member, Code: http.StatusOK})
	}

	switch {
	case failed == 0:
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	case failed == len(g.Members):
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"message": "deployment failed", "responses": responses})
	default:
		writeJSON(w, http.StatusMultiStatus, map[string]interface{}{"id": id, "responses": responses})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
