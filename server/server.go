// Package server hosts a running tree over HTTP: JSON endpoints for the
// mesh and diagnostics plus a websocket that streams every snapshot.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/o0olele/sctree-go/builder"
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/growth"
)

// ErrUnsafePath is returned for file names that would leave the output
// directory.
var ErrUnsafePath = errors.New("file name must be a local path")

// Server exposes a Runner.
type Server struct {
	runner    *Runner
	log       *logrus.Entry
	webDir    string
	outputDir string
	upgrader  websocket.Upgrader
	handler   http.Handler
}

// Option customizes a Server.
type Option func(s *Server)

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithWebDir serves static viewer files from dir for every non-API path.
func WithWebDir(dir string) Option {
	return func(s *Server) {
		s.webDir = dir
	}
}

// WithOutputDir lets /api/save and /api/mesh/info touch files under dir.
// Without it both endpoints are disabled.
func WithOutputDir(dir string) Option {
	return func(s *Server) {
		s.outputDir = dir
	}
}

// New builds the router around runner.
func New(runner *Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.StandardLogger().WithField("component", "server")
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/init", s.initHandler).Methods("POST")
	api.HandleFunc("/tick", s.tickHandler).Methods("POST")
	api.HandleFunc("/state", s.stateHandler).Methods("GET")
	api.HandleFunc("/mesh", s.meshHandler).Methods("GET")
	api.HandleFunc("/debug", s.debugHandler).Methods("GET")
	api.HandleFunc("/octree", s.octreeHandler).Methods("GET")
	api.HandleFunc("/region", s.regionHandler).Methods("PUT")
	api.HandleFunc("/save", s.saveHandler).Methods("POST")
	api.HandleFunc("/mesh/info", s.meshInfoHandler).Methods("GET")
	r.HandleFunc("/ws", s.wsHandler)

	if s.webDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.webDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	s.handler = c.Handler(r)
	return s
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// InitRequest restarts growth. Omitted keys keep their defaults.
type InitRequest struct {
	Params *growth.Params `json:"params,omitempty"`
}

func (s *Server) initHandler(w http.ResponseWriter, r *http.Request) {
	params := growth.DefaultParams()
	req := InitRequest{Params: &params}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Params == nil {
		req.Params = &params
	}
	if err := s.runner.Reset(*req.Params); err != nil {
		http.Error(w, fmt.Sprintf("Invalid parameters: %v", err), http.StatusBadRequest)
		return
	}
	s.log.WithField("seed", req.Params.Seed).Info("growth reset queued")
	writeJSON(w, map[string]string{"status": "initialized"})
}

// TickRequest advances the simulation by DT seconds.
type TickRequest struct {
	DT float64 `json:"dt"`
}

func (s *Server) tickHandler(w http.ResponseWriter, r *http.Request) {
	var req TickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	snap, err := s.runner.Tick(req.DT)
	if err != nil {
		http.Error(w, fmt.Sprintf("Tick failed: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.runner.Snapshot())
}

func (s *Server) meshHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.runner.Snapshot()
	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, snap.Mesh)
	case "bin":
		content, err := builder.Encode(snap.Mesh)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to encode mesh: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(content)
	case "obj":
		w.Header().Set("Content-Type", "text/plain")
		if err := builder.WriteOBJ(w, snap.Mesh); err != nil {
			s.log.WithError(err).Warn("failed to stream obj")
		}
	default:
		http.Error(w, "Unknown format", http.StatusBadRequest)
	}
}

func (s *Server) debugHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.runner.Snapshot().Debug)
}

func (s *Server) octreeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.runner.Snapshot().Octree)
}

// RegionRequest moves the region of interest. Box wins over Sphere, and
// Pointer turns a device orientation into a region.
type RegionRequest struct {
	Box     *geometry.BoundingBox `json:"box,omitempty"`
	Sphere  *growth.RegionParams  `json:"sphere,omitempty"`
	Pointer *struct {
		Yaw      float32 `json:"yaw"`
		Pitch    float32 `json:"pitch"`
		Distance float32 `json:"distance"`
		Radius   float32 `json:"radius"`
	} `json:"pointer,omitempty"`
}

func (s *Server) regionHandler(w http.ResponseWriter, r *http.Request) {
	var req RegionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var box geometry.BoundingBox
	switch {
	case req.Box != nil:
		box = *req.Box
	case req.Sphere != nil && req.Sphere.Radius > 0:
		box = req.Sphere.Box()
	case req.Pointer != nil && req.Pointer.Radius > 0:
		box = growth.PointerRegion(req.Pointer.Yaw, req.Pointer.Pitch, req.Pointer.Distance, req.Pointer.Radius)
	default:
		http.Error(w, "Missing region", http.StatusBadRequest)
		return
	}
	if err := s.runner.SetRegion(box); err != nil {
		http.Error(w, fmt.Sprintf("Invalid region: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]interface{}{"status": "queued", "region": box})
}

// resolve maps a client file name onto the output directory. Absolute
// names and names climbing out with ".." are rejected.
func (s *Server) resolve(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", errors.Wrapf(ErrUnsafePath, "%q", name)
	}
	return filepath.Join(s.outputDir, name), nil
}

// SaveRequest exports the latest mesh into the output directory. A .obj
// filename writes Wavefront text, anything else the binary mesh format.
type SaveRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	if s.outputDir == "" {
		http.Error(w, "Saving is disabled", http.StatusForbidden)
		return
	}
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	path, err := s.resolve(req.Filename)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid filename: %v", err), http.StatusBadRequest)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save mesh: %v", err), http.StatusInternalServerError)
		return
	}

	snap := s.runner.Snapshot()
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		err = builder.SaveOBJ(snap.Mesh, path)
	} else {
		err = builder.Save(snap.Mesh, path)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to save mesh: %v", err), http.StatusInternalServerError)
		return
	}
	s.log.WithFields(logrus.Fields{"file": path, "seq": snap.Seq}).Info("mesh saved")
	writeJSON(w, map[string]interface{}{
		"status":    "saved",
		"filename":  req.Filename,
		"seq":       snap.Seq,
		"vertices":  snap.Mesh.GetVertexCount(),
		"triangles": snap.Mesh.GetTriangleCount(),
	})
}

func (s *Server) meshInfoHandler(w http.ResponseWriter, r *http.Request) {
	if s.outputDir == "" {
		http.Error(w, "Saving is disabled", http.StatusForbidden)
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "Missing filename parameter", http.StatusBadRequest)
		return
	}
	path, err := s.resolve(filename)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid filename: %v", err), http.StatusBadRequest)
		return
	}
	info, err := builder.GetFileInfo(path)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get file info: %v", err), http.StatusInternalServerError)
		return
	}
	info.Filename = filename
	writeJSON(w, info)
}

// Frame is what the websocket pushes for each snapshot.
type Frame struct {
	*Snapshot
	Mesh *builder.MeshData `json:"mesh"`
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	frames, unsubscribe := s.runner.Subscribe()
	defer unsubscribe()

	// the reader only notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log := s.log.WithField("remote", r.RemoteAddr)
	log.Debug("websocket connected")
	for {
		select {
		case <-closed:
			log.Debug("websocket closed")
			return
		case snap := <-frames:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(Frame{Snapshot: snap, Mesh: snap.Mesh}); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		}
	}
}
