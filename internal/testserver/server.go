// Package testserver runs a fake Instagram web API over httptest for tests.
// It serves the profile lookup, both friendships listings and the unfollow
// mutation for a single owner account.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"igunfollow/pkg/graph"
)

// Credentials the server accepts
const (
	SessionID = "test-session-id"
	CSRFToken = "test-csrf-token"
	AppID     = "936619743392459"
)

// Request kinds counted by the server
const (
	KindProfile   = "profile"
	KindFollowers = "followers"
	KindFollowing = "following"
	KindDestroy   = "destroy"
)

// User is an account known to the server
type User struct {
	ID       string
	Username string
	FullName string
}

// Server is a stateful fake of the endpoints igunfollow calls
type Server struct {
	server *httptest.Server

	mu           sync.Mutex
	owner        User
	followers    []User
	following    []User
	pageSize     int
	numericIDs   bool
	requireLogin bool
	rotateCSRF   bool
	csrfToken    string
	rotations    int

	errorResponses map[string]int
	destroyStatus  map[string]int
	dropDestroy    map[string]bool
	onDestroy      func(id string)

	requests  map[string]int
	appIDs    map[string]int
	destroyed []string
}

// New starts a server for owner with the given connection lists
func New(owner User, followers, following []User) *Server {
	s := &Server{
		owner:          owner,
		followers:      append([]User(nil), followers...),
		following:      append([]User(nil), following...),
		csrfToken:      CSRFToken,
		errorResponses: make(map[string]int),
		destroyStatus:  make(map[string]int),
		dropDestroy:    make(map[string]bool),
		requests:       make(map[string]int),
		appIDs:         make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/web_profile_info/", s.handleProfile)
	mux.HandleFunc("/api/v1/friendships/", s.handleFriendships)

	s.server = httptest.NewServer(mux)
	return s
}

// URL returns the base URL of the server
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down
func (s *Server) Close() {
	s.server.Close()
}

// SetPageSize forces every listing page to n entries regardless of the
// requested count. Zero honours the count parameter.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// SetNumericIDs makes the server send pk values and cursors as JSON numbers
func (s *Server) SetNumericIDs(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numericIDs = on
}

// SetRequireLogin makes the profile lookup answer requires_to_login
func (s *Server) SetRequireLogin(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireLogin = on
}

// SetRotateCSRF makes every successful unfollow rotate the csrftoken cookie
func (s *Server) SetRotateCSRF(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotateCSRF = on
}

// SetErrorResponse makes every request of kind answer with code
func (s *Server) SetErrorResponse(kind string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorResponses[kind] = code
}

// FailUnfollow makes unfollowing id answer with code
func (s *Server) FailUnfollow(id string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyStatus[id] = code
}

// DropUnfollow makes unfollowing id close the connection without a response
func (s *Server) DropUnfollow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropDestroy[id] = true
}

// OnUnfollow registers a hook called before each unfollow is answered
func (s *Server) OnUnfollow(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDestroy = fn
}

// Requests returns how many requests of kind were received
func (s *Server) Requests(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[kind]
}

// AppIDRequests returns how many requests carried the given X-IG-App-ID
func (s *Server) AppIDRequests(appID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appIDs[appID]
}

// Unfollowed returns the ids successfully unfollowed, in request order
func (s *Server) Unfollowed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.destroyed...)
}

// CSRFRotations returns how many times the csrftoken cookie was rotated
func (s *Server) CSRFRotations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotations
}

// Following returns the owner's current following list
func (s *Server) Following() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]User(nil), s.following...)
}

// begin counts the request and checks the session. It reports false when a
// response has already been written.
func (s *Server) begin(w http.ResponseWriter, r *http.Request, kind string) bool {
	s.mu.Lock()
	s.requests[kind]++
	s.appIDs[r.Header.Get("X-IG-App-ID")]++
	code := s.errorResponses[kind]
	s.mu.Unlock()

	if c, err := r.Cookie("sessionid"); err != nil || c.Value != SessionID {
		sendError(w, http.StatusUnauthorized, "login required")
		return false
	}
	if r.Header.Get("X-IG-App-ID") == "" {
		sendError(w, http.StatusBadRequest, "useragent mismatch")
		return false
	}
	if code > 0 {
		sendError(w, code, fmt.Sprintf("injected %s error", kind))
		return false
	}
	return true
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r, KindProfile) {
		return
	}

	s.mu.Lock()
	requireLogin := s.requireLogin
	user, ok := s.lookup(r.URL.Query().Get("username"))
	s.mu.Unlock()

	if requireLogin {
		writeJSON(w, http.StatusOK, map[string]interface{}{"requires_to_login": true, "status": "ok"})
		return
	}
	if !ok {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"id":        user.ID,
				"username":  user.Username,
				"full_name": user.FullName,
			},
		},
		"status": "ok",
	})
}

func (s *Server) lookup(username string) (User, bool) {
	if username == s.owner.Username {
		return s.owner, true
	}
	for _, list := range [][]User{s.followers, s.following} {
		for _, u := range list {
			if u.Username == username {
				return u, true
			}
		}
	}
	return User{}, false
}

// handleFriendships serves /api/v1/friendships/<id>/{followers|following}/
// and /api/v1/friendships/destroy/<id>/
func (s *Server) handleFriendships(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/friendships/"), "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	switch {
	case parts[0] == "destroy":
		s.handleDestroy(w, r, parts[1])
	case parts[1] == KindFollowers || parts[1] == KindFollowing:
		s.handleList(w, r, parts[0], parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, userID, kind string) {
	if !s.begin(w, r, kind) {
		return
	}
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.owner.ID {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}

	list := s.followers
	if kind == KindFollowing {
		list = s.following
	}

	perPage := s.pageSize
	if perPage <= 0 {
		perPage, _ = strconv.Atoi(r.URL.Query().Get("count"))
	}
	if perPage <= 0 {
		perPage = 50
	}

	start := 0
	if maxID := r.URL.Query().Get("max_id"); maxID != "" {
		var err error
		if start, err = strconv.Atoi(maxID); err != nil || start < 0 || start > len(list) {
			sendError(w, http.StatusBadRequest, "invalid max_id")
			return
		}
	}
	end := min(start+perPage, len(list))

	users := make([]map[string]interface{}, 0, end-start)
	for _, u := range list[start:end] {
		users = append(users, map[string]interface{}{
			"pk":        s.id(u.ID),
			"pk_id":     u.ID,
			"username":  u.Username,
			"full_name": u.FullName,
		})
	}

	body := map[string]interface{}{
		"users":     users,
		"page_size": perPage,
		"status":    "ok",
	}
	if end < len(list) {
		body["next_max_id"] = s.id(strconv.Itoa(end))
	}
	writeJSON(w, http.StatusOK, body)
}

// id renders an identifier as a string, or as a number in numeric mode
func (s *Server) id(v string) interface{} {
	if s.numericIDs {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return v
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request, userID string) {
	if !s.begin(w, r, KindDestroy) {
		return
	}
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	hook := s.onDestroy
	token := s.csrfToken
	drop := s.dropDestroy[userID]
	code := s.destroyStatus[userID]
	s.mu.Unlock()

	if hook != nil {
		hook(userID)
	}

	if drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
				return
			}
		}
		sendError(w, http.StatusInternalServerError, "dropped")
		return
	}

	if r.Header.Get("X-CSRFToken") != token {
		sendError(w, http.StatusForbidden, "CSRF token missing or incorrect")
		return
	}
	if code > 0 {
		sendError(w, code, "unfollow rejected")
		return
	}

	s.mu.Lock()
	s.destroyed = append(s.destroyed, userID)
	for i, u := range s.following {
		if u.ID == userID {
			s.following = append(s.following[:i:i], s.following[i+1:]...)
			break
		}
	}
	if s.rotateCSRF {
		s.rotations++
		s.csrfToken = fmt.Sprintf("%s-%d", CSRFToken, s.rotations)
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: s.csrfToken, Path: "/"})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"friendship_status": map[string]interface{}{"following": false},
		"status":            "ok",
	})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func sendError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]interface{}{
		"message": message,
		"status":  "fail",
	})
}

// Users builds n accounts with sequential numeric ids starting at from
func Users(prefix string, from, n int) []User {
	users := make([]User, n)
	for i := range users {
		id := strconv.Itoa(from + i)
		users[i] = User{ID: id, Username: prefix + id, FullName: strings.ToUpper(prefix) + " " + id}
	}
	return users
}

// Accounts converts users to the graph model
func Accounts(users []User) []graph.Account {
	accounts := make([]graph.Account, len(users))
	for i, u := range users {
		accounts[i] = graph.Account{ID: u.ID, Handle: u.Username, FullName: u.FullName}
	}
	return accounts
}
