// Package clienttest runs an in-memory Authentication API for tests. It
// follows the wire contract of the real API: JSON bodies, bearer JWTs with a
// "sub" email claim, and {"detail": "..."} error bodies.
package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type account struct {
	user     models.User
	password string
}

type failure struct {
	status int
	detail string
}

// Server is a fake Authentication API backed by maps.
type Server struct {
	*httptest.Server

	TokenTTL time.Duration

	signingKey []byte

	mu       sync.Mutex
	accounts map[int64]*account
	nextID   int64
	calls    map[string]int
	failures map[string]failure
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	secret, err := common.MakeRandHexString(32)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}

	s := &Server{
		TokenTTL:   30 * time.Minute,
		signingKey: []byte(secret),
		accounts:   make(map[int64]*account),
		nextID:     1,
		calls:      make(map[string]int),
		failures:   make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Message{Message: "Authentication API is running!"})
	})
	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.Post("/setup-admin", s.setupAdmin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/me", s.me)
		r.Get("/protected", s.protected)
		r.Put("/profile", s.updateProfile)
		r.Post("/change-password", s.changePassword)

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.listUsers)
			r.Get("/{id}", s.getUser)
			r.Put("/{id}", s.updateUser)
			r.Delete("/{id}", s.deleteUser)
		})
	})

	return r
}

// AddUser creates an account directly and returns its record.
func (s *Server) AddUser(email, username, password string, admin bool) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(models.Registration{Email: email, Username: username, Password: password}, admin)
}

// User returns the stored record for email.
func (s *Server) User(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.byEmailLocked(email); a != nil {
		return a.user, true
	}
	return models.User{}, false
}

// IssueToken signs a token for email that expires after ttl.
func (s *Server) IssueToken(email string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic(err)
	}
	return token
}

// FailNext makes the next request to route ("POST /login") answer status
// with detail instead of being handled.
func (s *Server) FailNext(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Calls returns how many requests hit route ("GET /me").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests of any kind.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimRight(r.URL.Path, "/")
		if r.URL.Path == "/" {
			route = r.Method + " /"
		}

		s.mu.Lock()
		s.calls[route]++
		f, fail := s.failures[route]
		delete(s.failures, route)
		s.mu.Unlock()

		if fail {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxAccount struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return s.signingKey, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		a := s.byEmailLocked(claims.Subject)
		s.mu.Unlock()
		if a == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithAccount(r, a)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !accountFrom(r).user.IsAdmin {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decode(w, r, &reg) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if detail := s.conflictLocked(reg.Email, reg.Username, 0); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}
	writeJSON(w, http.StatusOK, s.addLocked(reg, false))
}

func (s *Server) setupAdmin(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decode(w, r, &reg) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.user.IsAdmin {
			writeDetail(w, http.StatusBadRequest, "Admin user already exists")
			return
		}
	}
	if detail := s.conflictLocked(reg.Email, reg.Username, 0); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}
	s.addLocked(reg, true)
	writeJSON(w, http.StatusOK, models.Message{Message: "Admin user created successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}

	s.mu.Lock()
	a := s.byEmailLocked(creds.Email)
	ok := a != nil && a.password == creds.Password
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, models.Token{AccessToken: s.IssueToken(creds.Email, s.TokenTTL), TokenType: "bearer"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, accountFrom(r).user)
}

func (s *Server) protected(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := fmt.Sprintf("Hello %s, this is a protected route!", accountFrom(r).user.Username)
	writeJSON(w, http.StatusOK, models.Message{Message: msg})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !decode(w, r, &upd) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := accountFrom(r)
	if detail := s.conflictLocked(deref(upd.Email), deref(upd.Username), a.user.ID); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}
	applyProfile(&a.user, upd)
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var pc models.PasswordChange
	if !decode(w, r, &pc) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := accountFrom(r)
	if a.password != pc.CurrentPassword {
		writeDetail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	a.password = pc.NewPassword
	writeJSON(w, http.StatusOK, models.Message{Message: "Password updated successfully"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]models.User, 0, len(ids))
	for i, id := range ids {
		if i < skip || len(users) >= limit {
			continue
		}
		users = append(users, s.accounts[id].user)
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byIDLocked(chi.URLParam(r, "id"))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var upd models.AdminUserUpdate
	if !decode(w, r, &upd) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byIDLocked(chi.URLParam(r, "id"))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if detail := s.conflictLocked(deref(upd.Email), deref(upd.Username), a.user.ID); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}
	applyProfile(&a.user, upd.ProfileUpdate)
	if upd.IsActive != nil {
		a.user.IsActive = *upd.IsActive
	}
	if upd.IsAdmin != nil {
		a.user.IsAdmin = *upd.IsAdmin
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byIDLocked(chi.URLParam(r, "id"))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if a.user.ID == accountFrom(r).user.ID {
		writeDetail(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	delete(s.accounts, a.user.ID)
	writeJSON(w, http.StatusOK, models.Message{Message: "User deleted successfully"})
}

func (s *Server) addLocked(reg models.Registration, admin bool) models.User {
	u := models.User{
		ID:        s.nextID,
		Email:     reg.Email,
		Username:  reg.Username,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Phone:     reg.Phone,
		IsActive:  true,
		IsAdmin:   admin,
	}
	s.accounts[u.ID] = &account{user: u, password: reg.Password}
	s.nextID++
	return u
}

func (s *Server) byEmailLocked(email string) *account {
	for _, a := range s.accounts {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}

func (s *Server) byIDLocked(raw string) *account {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return s.accounts[id]
}

func (s *Server) conflictLocked(email, username string, self int64) string {
	for _, a := range s.accounts {
		if a.user.ID == self {
			continue
		}
		if email != "" && a.user.Email == email {
			return "Email already registered"
		}
		if username != "" && a.user.Username == username {
			return "Username already taken"
		}
	}
	return ""
}

func applyProfile(u *models.User, upd models.ProfileUpdate) {
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.FirstName != nil {
		u.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = upd.Phone
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Invalid JSON body"}},
		})
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
