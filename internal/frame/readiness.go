// Package frame models the host shell the widget is embedded in. The shell
// contributes a single readiness flag; nothing interactive is shown before it
// is raised.
package frame

import (
	"log/slog"
	"net/http"
	"sync"
)

// Readiness is the isSDKLoaded flag. It starts false and, once raised, stays
// raised.
type Readiness struct {
	mu    sync.RWMutex
	ready bool
}

func NewReadiness() *Readiness {
	return &Readiness{}
}

// MarkReady raises the flag. Later calls are no-ops.
func (r *Readiness) MarkReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return
	}
	r.ready = true
	slog.Info("frame ready")
}

func (r *Readiness) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Handler answers readiness checks: 200 once ready, 503 before.
func (r *Readiness) Handler(w http.ResponseWriter, _ *http.Request) {
	if !r.IsReady() {
		http.Error(w, "Loading", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
