// internal/quiz/repository.go
package quiz

import (
	"context"
	"errors"
	"sync"

	"quiz-widget/internal/models"
)

// Store keeps live sessions between requests. GetSession returns
// models.ErrSessionNotFound for ids it does not hold.
type Store interface {
	SaveSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, id string) (models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// MemoryRepository is the in-process Store used when no Redis is configured.
type MemoryRepository struct {
	sessions sync.Map // map[string]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveSession(_ context.Context, session models.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	r.sessions.Store(session.ID, session.Clone())
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, id string) (models.Session, error) {
	val, ok := r.sessions.Load(id)
	if !ok {
		return models.Session{}, models.ErrSessionNotFound
	}

	session, ok := val.(models.Session)
	if !ok {
		return models.Session{}, errors.New("unexpected value type in session repository")
	}
	return session.Clone(), nil
}

func (r *MemoryRepository) DeleteSession(_ context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}
