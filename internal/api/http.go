package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/localkv/internal/store"
	"github.com/heysubinoy/localkv/pkg/localstore"
)

const maxBodyBytes = 1 << 20

// Joiner manages Raft membership. Implemented by *node.Node.
type Joiner interface {
	Join(id, addr string) error
	// Leader returns the current leader, empty when none is known.
	Leader() (id, addr string)
}

// Server wraps a localstore.Store and exposes HTTP endpoints for its operations.
type Server struct {
	Store   *localstore.Store
	Metrics *store.InstrumentedStore // optional
	Cluster Joiner                   // optional
	Logger  hclog.Logger
}

// NewServer creates a new HTTP server over the given store.
func NewServer(s *localstore.Store, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{Store: s, Logger: logger}
}

// Router builds the chi router serving all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Delete("/items", s.handleClear)
		r.Get("/items/{key}", s.handleRead)
		r.Head("/items/{key}", s.handleHas)
		r.Put("/items/{key}", s.handleWrite)
		r.Patch("/items/{key}", s.handleUpdate)
		r.Delete("/items/{key}", s.handleDelete)
		r.Put("/expiring/{key}", s.handleWriteWithExpiry)
		r.Get("/expiring/{key}", s.handleReadWithExpiry)
		r.Post("/clean-expired", s.handleCleanExpired)
		if s.Cluster != nil {
			r.Post("/cluster/join", s.handleJoin)
			r.Get("/cluster/leader", s.handleLeader)
		}
	})

	if s.Metrics != nil {
		r.Get("/metrics", MetricsHandler(s.Metrics))
	}
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// handleRead handles GET /v1/items/{key}.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, s.Store.Read(chi.URLParam(r, "key")))
}

// handleHas handles HEAD /v1/items/{key}: 200 if present, 404 otherwise.
func (s *Server) handleHas(w http.ResponseWriter, r *http.Request) {
	if s.Store.Has(chi.URLParam(r, "key")) {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// handleWrite handles PUT /v1/items/{key} with a JSON value as body.
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}

	if err := s.Store.Write(chi.URLParam(r, "key"), value); err != nil {
		writeWriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdate handles PATCH /v1/items/{key} with a JSON value as body.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}
	writeOutcome(w, s.Store.Update(chi.URLParam(r, "key"), value))
}

// handleDelete handles DELETE /v1/items/{key}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, s.Store.Delete(chi.URLParam(r, "key")))
}

// handleClear handles DELETE /v1/items.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, s.Store.Clear())
}

// handleWriteWithExpiry handles PUT /v1/expiring/{key}?ttl=30s.
func (s *Server) handleWriteWithExpiry(w http.ResponseWriter, r *http.Request) {
	ttl, err := time.ParseDuration(r.URL.Query().Get("ttl"))
	if err != nil {
		http.Error(w, "Invalid ttl parameter", http.StatusBadRequest)
		return
	}

	value, ok := decodeValue(w, r)
	if !ok {
		return
	}

	if err := s.Store.WriteWithExpiry(chi.URLParam(r, "key"), value, ttl); err != nil {
		writeWriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReadWithExpiry handles GET /v1/expiring/{key}.
func (s *Server) handleReadWithExpiry(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, s.Store.ReadWithExpiry(chi.URLParam(r, "key")))
}

// handleCleanExpired handles POST /v1/clean-expired.
func (s *Server) handleCleanExpired(w http.ResponseWriter, r *http.Request) {
	s.Store.CleanExpired()
	w.WriteHeader(http.StatusNoContent)
}

// handleJoin handles POST /v1/cluster/join.
// Expects: {"id": "node2", "addr": "10.0.0.2:7000"}
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Addr string `json:"addr"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Addr == "" {
		http.Error(w, "Missing id or addr field", http.StatusBadRequest)
		return
	}

	if err := s.Cluster.Join(req.ID, req.Addr); err != nil {
		s.Logger.Warn("join failed", "id", req.ID, "addr", req.Addr, "error", err)
		http.Error(w, "Failed to join node", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLeader handles GET /v1/cluster/leader.
func (s *Server) handleLeader(w http.ResponseWriter, r *http.Request) {
	id, addr := s.Cluster.Leader()
	if id == "" {
		http.Error(w, "No leader available", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "addr": addr})
}

func decodeValue(w http.ResponseWriter, r *http.Request) (any, bool) {
	var value any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&value); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	return value, true
}

func writeWriteError(w http.ResponseWriter, err error) {
	var serr *localstore.SerializationError
	switch {
	case errors.Is(err, localstore.ErrInvalidKey), errors.As(err, &serr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeOutcome(w http.ResponseWriter, out localstore.Outcome) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(outcomeStatus(out))
	_ = json.NewEncoder(w).Encode(out)
}

// outcomeStatus maps an outcome to an HTTP status code.
func outcomeStatus(out localstore.Outcome) int {
	if out.OK() {
		return http.StatusOK
	}
	switch out.Message() {
	case localstore.MsgNotFound, localstore.MsgExpiryNotFound, localstore.MsgExpired:
		return http.StatusNotFound
	case localstore.MsgInvalidKey, localstore.MsgKeyNotString, localstore.MsgInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
