// Package vaulttest provides an in-memory fake of Vault's KV version 2 HTTP
// API for tests. It speaks just enough of the wire protocol to exercise the
// client end to end: versioned reads and writes with check-and-set,
// soft-delete/undelete/destroy, metadata, listing, and the config endpoints.
package vaulttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Server is a fake KV v2 server. Create it with New, point the client at
// URL(), and Close it when done.
type Server struct {
	mu      sync.RWMutex
	token   string
	mount   string
	secrets map[string]*secretEntry

	// engine-wide config, set through the config endpoint
	maxVersions int
	casRequired bool

	httpServer *httptest.Server
}

type secretEntry struct {
	versions    map[int]*versionEntry
	current     int
	casRequired bool
	maxVersions int
}

type versionEntry struct {
	data         map[string]string
	createdTime  string
	deletionTime string
	destroyed    bool
}

// New starts a fake server that accepts the given token on the given engine
// mount path.
func New(token, mount string) *Server {
	s := &Server{
		token:   token,
		mount:   strings.Trim(mount, "/"),
		secrets: make(map[string]*secretEntry),
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the server's base address.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Seed stores a secret version directly, bypassing the HTTP surface.
func (s *Server) Seed(path string, data map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(path, data)
}

// VersionCount reports how many versions of a secret exist, for assertions.
func (s *Server) VersionCount(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.secrets[path]
	if !ok {
		return 0
	}
	return len(entry.versions)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Vault-Token") != s.token {
		s.writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	prefix := "/v1/" + s.mount + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		s.writeError(w, http.StatusNotFound, "no handler for route")
		return
	}

	segment, path, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, prefix), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case segment == "data" && r.Method == http.MethodGet:
		s.handleRead(w, r, path)
	case segment == "data" && r.Method == http.MethodPost:
		s.handleWrite(w, r, path)
	case segment == "data" && r.Method == http.MethodDelete:
		s.handleSoftDelete(w, path)
	case segment == "delete" && r.Method == http.MethodPost:
		s.handleVersions(w, r, path, s.deleteVersion)
	case segment == "undelete" && r.Method == http.MethodPost:
		s.handleVersions(w, r, path, s.undeleteVersion)
	case segment == "destroy" && r.Method == http.MethodPost:
		s.handleVersions(w, r, path, s.destroyVersion)
	case segment == "metadata" && r.Method == http.MethodGet && r.URL.Query().Get("list") == "true":
		s.handleList(w, path)
	case segment == "metadata" && r.Method == http.MethodGet:
		s.handleMetadata(w, path)
	case segment == "metadata" && r.Method == http.MethodPost:
		s.handleSecretConfig(w, r, path)
	case segment == "metadata" && r.Method == http.MethodDelete:
		delete(s.secrets, path)
		w.WriteHeader(http.StatusNoContent)
	case segment == "config" && r.Method == http.MethodPost:
		s.handleEngineConfig(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "unsupported operation")
	}
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request, path string) {
	entry, ok := s.secrets[path]
	if !ok {
		s.writeError(w, http.StatusNotFound)
		return
	}

	n := entry.current
	if raw := r.URL.Query().Get("version"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid version parameter")
			return
		}
		if parsed != 0 {
			n = parsed
		}
	}

	version, ok := entry.versions[n]
	if !ok || version.destroyed || version.deletionTime != "" {
		s.writeError(w, http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"data": version.data,
			"metadata": map[string]any{
				"version":       n,
				"created_time":  version.createdTime,
				"deletion_time": version.deletionTime,
				"destroyed":     version.destroyed,
			},
		},
	})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request, path string) {
	var body struct {
		Options struct {
			CAS *int `json:"cas"`
		} `json:"options"`
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current := 0
	casRequired := s.casRequired
	if entry, ok := s.secrets[path]; ok {
		current = entry.current
		casRequired = casRequired || entry.casRequired
	}

	if body.Options.CAS == nil {
		if casRequired {
			s.writeError(w, http.StatusBadRequest, "check-and-set parameter required for this call")
			return
		}
	} else if *body.Options.CAS != current {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("check-and-set parameter did not match the current version (%d)", current))
		return
	}

	version := s.write(path, body.Data)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"version":       version,
			"created_time":  nowRFC3339(),
			"deletion_time": "",
			"destroyed":     false,
		},
	})
}

// write stores a new version and returns its number. Caller holds the lock.
func (s *Server) write(path string, data map[string]string) int {
	entry, ok := s.secrets[path]
	if !ok {
		entry = &secretEntry{versions: make(map[int]*versionEntry)}
		s.secrets[path] = entry
	}

	entry.current++
	entry.versions[entry.current] = &versionEntry{
		data:        data,
		createdTime: nowRFC3339(),
	}

	limit := entry.maxVersions
	if limit == 0 {
		limit = s.maxVersions
	}
	if limit > 0 {
		for n := range entry.versions {
			if n <= entry.current-limit {
				delete(entry.versions, n)
			}
		}
	}
	return entry.current
}

func (s *Server) handleSoftDelete(w http.ResponseWriter, path string) {
	if entry, ok := s.secrets[path]; ok {
		if version, ok := entry.versions[entry.current]; ok {
			version.deletionTime = nowRFC3339()
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request, path string, apply func(*versionEntry)) {
	var body struct {
		Versions []int `json:"versions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if entry, ok := s.secrets[path]; ok {
		for _, n := range body.Versions {
			if version, ok := entry.versions[n]; ok {
				apply(version)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteVersion(v *versionEntry) {
	v.deletionTime = nowRFC3339()
}

func (s *Server) undeleteVersion(v *versionEntry) {
	if !v.destroyed {
		v.deletionTime = ""
	}
}

func (s *Server) destroyVersion(v *versionEntry) {
	v.destroyed = true
	v.data = nil
}

func (s *Server) handleList(w http.ResponseWriter, path string) {
	prefix := ""
	if path != "" {
		prefix = strings.TrimSuffix(path, "/") + "/"
	}

	seen := make(map[string]bool)
	for name := range s.secrets {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seen[rest[:i+1]] = true // folder marker
		} else {
			seen[rest] = true
		}
	}

	if len(seen) == 0 {
		s.writeError(w, http.StatusNotFound)
		return
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"keys": keys},
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, path string) {
	entry, ok := s.secrets[path]
	if !ok {
		s.writeError(w, http.StatusNotFound)
		return
	}

	versions := make(map[string]any, len(entry.versions))
	oldest := 0
	for n, version := range entry.versions {
		if oldest == 0 || n < oldest {
			oldest = n
		}
		versions[strconv.Itoa(n)] = map[string]any{
			"created_time":  version.createdTime,
			"deletion_time": version.deletionTime,
			"destroyed":     version.destroyed,
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"current_version": entry.current,
			"oldest_version":  oldest,
			"versions":        versions,
		},
	})
}

func (s *Server) handleSecretConfig(w http.ResponseWriter, r *http.Request, path string) {
	var body struct {
		MaxVersions int  `json:"max_versions"`
		CASRequired bool `json:"cas_required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, ok := s.secrets[path]
	if !ok {
		entry = &secretEntry{versions: make(map[int]*versionEntry)}
		s.secrets[path] = entry
	}
	entry.maxVersions = body.MaxVersions
	entry.casRequired = body.CASRequired
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEngineConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaxVersions int  `json:"max_versions"`
		CASRequired bool `json:"cas_required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.maxVersions = body.MaxVersions
	s.casRequired = body.CASRequired
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	s.writeJSON(w, status, map[string]any{"errors": messages})
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
