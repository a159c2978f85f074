// internal/quiz/service.go
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"quiz-widget/internal/models"
	"quiz-widget/internal/widget"
)

// Broadcaster pushes a message to every connection watching a session.
type Broadcaster interface {
	BroadcastMessage(sessionID string, messageType string, data interface{})
}

// ReadyChecker reports the host shell's readiness flag.
type ReadyChecker interface {
	IsReady() bool
}

type Service struct {
	engine *Engine
	store  Store
	hub    Broadcaster
	ready  ReadyChecker
	header models.Header

	// Serializes transitions per session id. Entries live only while a
	// command for that id holds or waits for the lock.
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(engine *Engine, store Store, hub Broadcaster, ready ReadyChecker, header models.Header) *Service {
	return &Service{
		engine: engine,
		store:  store,
		hub:    hub,
		ready:  ready,
		header: header,
		locks:  make(map[string]*sessionLock),
	}
}

// lock takes the per-session lock and returns its release func.
func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *Service) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

// load reads a session and checks it against the engine's question set.
func (s *Service) load(ctx context.Context, id string) (models.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	if err := s.engine.Check(session); err != nil {
		slog.Warn("stored session rejected", "session_id", id, "error", err)
		return models.Session{}, err
	}
	return session, nil
}

// StartSession creates a fresh session at Active(0).
func (s *Service) StartSession(ctx context.Context) (models.Session, error) {
	session := s.engine.Start(uuid.NewString())
	if err := s.store.SaveSession(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	slog.Info("session started", "session_id", session.ID, "questions", s.engine.Len())
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (models.Session, error) {
	return s.load(ctx, id)
}

// SelectOption applies a select_option command to the session.
func (s *Service) SelectOption(ctx context.Context, id string, index int) (models.Session, error) {
	return s.apply(ctx, id, "select_option", func(session models.Session) (models.Session, error) {
		return s.engine.Select(session, index)
	})
}

// Advance applies an advance command to the session.
func (s *Service) Advance(ctx context.Context, id string) (models.Session, error) {
	return s.apply(ctx, id, "advance", s.engine.Advance)
}

func (s *Service) apply(ctx context.Context, id, command string, transition func(models.Session) (models.Session, error)) (models.Session, error) {
	if s.ready != nil && !s.ready.IsReady() {
		return models.Session{}, models.ErrNotReady
	}

	unlock := s.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return models.Session{}, err
	}

	next, err := transition(session)
	if err != nil {
		slog.Debug("command rejected", "session_id", id, "command", command, "error", err)
		return session, err
	}

	if err := s.store.SaveSession(ctx, next); err != nil {
		return session, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Debug("command applied",
		"session_id", id,
		"command", command,
		"state", s.engine.State(next).String(),
		"score", next.Score,
	)
	if next.Finished && !session.Finished {
		slog.Info("session finished", "session_id", id, "score", next.Score, "total", s.engine.Len())
	}

	if s.hub != nil {
		s.hub.BroadcastMessage(id, "state", s.Render(next))
	}
	return next, nil
}

// EndSession drops a session.
func (s *Service) EndSession(ctx context.Context, id string) error {
	unlock := s.lock(id)
	err := s.store.DeleteSession(ctx, id)
	unlock()
	if err != nil {
		return err
	}
	slog.Info("session ended", "session_id", id)
	return nil
}

// View loads the session and builds its widget view.
func (s *Service) View(ctx context.Context, id string) (models.View, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return models.View{}, err
	}
	return s.Render(session), nil
}

// Render builds the view for an already loaded session.
func (s *Service) Render(session models.Session) models.View {
	ready := s.ready == nil || s.ready.IsReady()
	return widget.Build(s.engine, session, ready, s.header)
}
