// Package httpapi is the local backend-for-frontend a browser UI talks to.
// Sign-in goes through the session manager and every other /api call is
// forwarded through the gateway, so the UI keeps working in demo mode.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/gateway"
	"github.com/example/ridepool-client/internal/models"
	"github.com/example/ridepool-client/internal/session"
)

type Sessions interface {
	State(ctx context.Context) session.State
	Login(ctx context.Context, creds models.Credentials) (models.Identity, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.Identity, error)
	Logout(ctx context.Context) error
}

type Forwarder interface {
	Do(ctx context.Context, req gateway.Request) (models.Envelope, error)
	RouteLabel(method, path string) string
}

type Availability interface {
	State() models.AvailabilityState
	CheckNow(ctx context.Context) bool
}

type Server struct {
	sessions Sessions
	gw       Forwarder
	avail    Availability
	logger   zerolog.Logger
	mux      *mux.Router
}

func NewServer(sessions Sessions, gw Forwarder, avail Availability, logger zerolog.Logger) *Server {
	s := &Server{sessions: sessions, gw: gw, avail: avail, logger: logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	s.mux.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout).Methods(http.MethodPost)
	s.mux.HandleFunc("/api/session", s.handleSession).Methods(http.MethodGet)
	s.mux.PathPrefix("/api/").HandlerFunc(s.handleForward)
	s.mux.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type sessionView struct {
	Status string       `json:"status"`
	Role   models.Role  `json:"role,omitempty"`
	User   *models.User `json:"user,omitempty"`
	Demo   bool         `json:"demo"`
}

func viewOf(st session.State) sessionView {
	v := sessionView{Status: st.Status.String(), Role: st.Role}
	if st.Identity != nil {
		u := st.Identity.User
		v.User = &u
		v.Demo = st.Identity.Demo
	}
	return v
}

func identityView(id models.Identity) sessionView {
	u := id.User
	return sessionView{Status: session.Authenticated.String(), Role: id.Role(), User: &u, Demo: id.Demo}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if _, err := readJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.sessions.Login(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": identityView(id)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if _, err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.sessions.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": identityView(id)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": viewOf(s.sessions.State(r.Context()))})
}

// handleStatus reports the cached availability; ?refresh=true probes first.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		s.avail.CheckNow(r.Context())
	}
	st := s.avail.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"reachable":     st.Reachable,
		"demoMode":      !st.Reachable,
		"lastCheckedAt": st.LastCheckedAt,
	})
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	present, err := readJSON(w, r, &body)
	if err != nil {
		writeError(w, err)
		return
	}
	req := gateway.Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if present {
		req.Body = body
	}
	env, err := s.gw.Do(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}
