package web

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/control"
	"github.com/b1naryth1ef/atlas/marker"
)

// Server exposes the rendered tiles and a small read-only status API.
type Server struct {
	registry   *atlas.Registry
	controller *control.Controller
	markers    marker.Store
	dataPath   string
}

// NewServer builds the web layer. markers may be nil.
func NewServer(registry *atlas.Registry, controller *control.Controller, markers marker.Store, dataPath string) *Server {
	return &Server{
		registry:   registry,
		controller: controller,
		markers:    markers,
		dataPath:   dataPath,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/worlds", s.handleWorlds)
	r.Get("/api/maps", s.handleMaps)
	r.Get("/api/markers", s.handleMarkers)

	tiles := http.FileServer(http.Dir(filepath.Join(s.dataPath, "tiles")))
	r.Handle("/tiles/*", http.StripPrefix("/tiles/", tiles))

	return r
}

func (s *Server) ListenAndServe(bind string) error {
	log.Printf("[web] listening on %s", bind)
	return http.ListenAndServe(bind, s.Handler())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[web] failed to encode response: %v", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.controller.Status()

	data := StatusData{
		Running:       status.Running,
		WorkerThreads: status.WorkerThreads,
		Tasks:         []TaskData{},
	}
	for _, t := range status.Tasks {
		data.Tasks = append(data.Tasks, TaskData{Ref: t.Ref, Description: t.Description})
	}

	writeJSON(w, data)
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	worlds := []WorldData{}
	for _, world := range s.registry.Worlds {
		worlds = append(worlds, WorldData{
			Name:    world.Name,
			UUID:    world.UUID.String(),
			Version: world.Version,
		})
	}
	writeJSON(w, worlds)
}

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	maps := []MapData{}
	for _, m := range s.registry.Maps {
		maps = append(maps, MapData{
			ID:      m.ID,
			Name:    m.Name,
			World:   m.World.Name,
			Regions: m.State.RegionCount(),
		})
	}
	writeJSON(w, maps)
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	if s.markers == nil {
		writeJSON(w, []marker.Marker{})
		return
	}

	markers, err := s.markers.List()
	if err != nil {
		http.Error(w, "failed to list markers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, markers)
}
