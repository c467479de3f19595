package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dgallion1/epd2doc/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// maxTrackedRuns bounds the number of finished runs kept for status lookups.
const maxTrackedRuns = 256

// runStore keeps the most recent runs, evicting the oldest first.
type runStore struct {
	mu    sync.Mutex
	limit int
	order []string
	runs  map[string]*pipeline.Run
}

func newRunStore(limit int) *runStore {
	return &runStore{limit: limit, runs: make(map[string]*pipeline.Run)}
}

func (s *runStore) add(run *pipeline.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) >= s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	s.order = append(s.order, run.ID)
	s.runs[run.ID] = run
}

func (s *runStore) get(id string) *pipeline.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run := s.runs.get(runID)
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run.Snapshot())
}
