// Package httpapi exposes the REST and WebSocket surface of the
// simulator: session lifecycle, node assignment, consensus message
// submission and history retrieval, grounded on
// uhyunpark-hyperlicked/pkg/api/{server,websocket}.go's mux+gorilla/
// websocket+rs/cors stack, adapted from a blockchain RPC surface to a
// session-oriented one.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked/pkg/httpapi/metrics"
	"github.com/uhyunpark/hyperlicked/pkg/session"
)

// Server wires the session manager, hub and router together.
type Server struct {
	manager *session.Manager
	hub     *Hub
	router  *mux.Router
	log     *zap.SugaredLogger
}

// NewServer builds a Server bound to manager and ready to route.
func NewServer(manager *session.Manager, log *zap.SugaredLogger) *Server {
	s := &Server{
		manager: manager,
		hub:     NewHub(log),
		router:  mux.NewRouter(),
		log:     log,
	}
	s.setupRoutes()
	return s
}

// Hub returns the server's broadcaster, for wiring into session.Manager
// as its Broadcaster.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/sessions").Subrouter()
	api.HandleFunc("", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/status", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/{id}/start", s.handleStartSession).Methods(http.MethodPost)
	api.HandleFunc("/{id}/assign-node", s.handleAssignNode).Methods(http.MethodPost)
	api.HandleFunc("/{id}/connected-nodes", s.handleConnectedNodes).Methods(http.MethodGet)
	api.HandleFunc("/{id}/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/{id}/propose", s.handlePropose).Methods(http.MethodPost)

	s.router.HandleFunc("/ws/{id}/{nodeId}", s.handleWebSocket)
	s.router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// Start installs CORS and serves the router on addr.
func (s *Server) Start(addr string) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	s.log.Infow("server starting", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	// A JSON body that omits messageDeliveryRate decodes to Go's zero
	// value, indistinguishable from an explicit 0. Pre-seed a sentinel
	// only Normalize's negative-value check will override.
	req.MessageDeliveryRate = -1
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	id := uuid.NewString()
	sess := s.manager.Create(id, req.Config)
	respondJSON(w, http.StatusCreated, CreateSessionResponse{ID: id, Snapshot: sess.Snapshot()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.manager.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.manager.Delete(id); err != nil {
		respondError(w, http.StatusNotFound, "session not found", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	sess.Start()
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleAssignNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var req AssignNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sess.Connect(req.NodeID)
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleConnectedNodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot().ConnectedNodes)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	roundParam := r.URL.Query().Get("round")
	if roundParam == "" {
		respondJSON(w, http.StatusOK, snap.History)
		return
	}
	round, err := strconv.Atoi(roundParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid round", err.Error())
		return
	}
	for _, item := range snap.History {
		if item.Round == round {
			respondJSON(w, http.StatusOK, item)
			return
		}
	}
	respondError(w, http.StatusNotFound, "round not found", "")
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var req ProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sess.SubmitHumanProposal(req.NodeID, req.Value)
	respondJSON(w, http.StatusAccepted, sess.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]
	sess, ok := s.manager.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found", id)
		return nil, false
	}
	return sess, true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg, message string) {
	respondJSON(w, status, ErrorResponse{Error: errMsg, Message: message})
}
