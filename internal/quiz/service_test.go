package quiz

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"quiz-widget/internal/models"
	"quiz-widget/internal/widget"
)

type broadcast struct {
	sessionID string
	kind      string
	data      interface{}
}

type recordingHub struct {
	mu       sync.Mutex
	messages []broadcast
}

func (h *recordingHub) BroadcastMessage(sessionID string, messageType string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, broadcast{sessionID: sessionID, kind: messageType, data: data})
}

func (h *recordingHub) all() []broadcast {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]broadcast(nil), h.messages...)
}

type staticReady bool

func (r staticReady) IsReady() bool { return bool(r) }

func newTestService(t *testing.T, ready bool) (*Service, *recordingHub) {
	t.Helper()
	hub := &recordingHub{}
	svc := NewService(newTestEngine(t), NewMemoryRepository(), hub, staticReady(ready), widget.NewHeader("test"))
	return svc, hub
}

func TestServiceSessionFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, hub := newTestService(t, true)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	_, err = svc.SelectOption(ctx, session.ID, 0)
	require.NoError(t, err)
	session, err = svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, session.CurrentIndex)

	_, err = svc.SelectOption(ctx, session.ID, 1)
	require.NoError(t, err)
	session, err = svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, session.Finished)
	require.Equal(t, 1, session.Score)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session, stored)

	messages := hub.all()
	require.Len(t, messages, 4)
	for _, m := range messages {
		require.Equal(t, session.ID, m.sessionID)
		require.Equal(t, "state", m.kind)
	}
	last, ok := messages[3].data.(models.View)
	require.True(t, ok)
	require.NotNil(t, last.Results)
	require.Equal(t, 1, last.Results.Score)
	require.Equal(t, 2, last.Results.Total)
}

func TestServiceRejectedCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("advance without selection leaves the stored session alone", func(t *testing.T) {
		t.Parallel()
		svc, hub := newTestService(t, true)
		session, err := svc.StartSession(ctx)
		require.NoError(t, err)

		got, err := svc.Advance(ctx, session.ID)
		require.ErrorIs(t, err, models.ErrNoSelection)
		require.Equal(t, session, got)

		stored, err := svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, session, stored)
		require.Empty(t, hub.all())
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t, true)
		_, err := svc.SelectOption(ctx, "missing", 0)
		require.ErrorIs(t, err, models.ErrSessionNotFound)
		_, err = svc.View(ctx, "missing")
		require.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("commands wait for the frame", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t, false)
		session, err := svc.StartSession(ctx)
		require.NoError(t, err)

		_, err = svc.SelectOption(ctx, session.ID, 0)
		require.ErrorIs(t, err, models.ErrNotReady)

		view, err := svc.View(ctx, session.ID)
		require.NoError(t, err)
		require.True(t, view.Loading)
	})
}

func TestServiceEndSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.EndSession(ctx, session.ID))

	_, err = svc.GetSession(ctx, session.ID)
	require.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestServiceConcurrentCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.SelectOption(ctx, session.ID, 1)
	require.NoError(t, err)

	// Many racing advances: exactly one may score the first question.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Advance(ctx, session.ID)
		}()
	}
	wg.Wait()

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.CurrentIndex)
	require.Equal(t, 1, stored.Score)
	require.False(t, stored.Finished)
}

func TestServiceStoredSessionFromAnotherQuestionSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, hub := newTestService(t, true)

	stale := models.Session{ID: "stale", CurrentIndex: 4, Score: 1}
	require.NoError(t, svc.store.SaveSession(ctx, stale))

	_, err := svc.SelectOption(ctx, "stale", 0)
	require.ErrorIs(t, err, models.ErrSessionCorrupt)
	_, err = svc.Advance(ctx, "stale")
	require.ErrorIs(t, err, models.ErrSessionCorrupt)
	_, err = svc.View(ctx, "stale")
	require.ErrorIs(t, err, models.ErrSessionCorrupt)
	_, err = svc.GetSession(ctx, "stale")
	require.ErrorIs(t, err, models.ErrSessionCorrupt)

	require.Empty(t, hub.all())
	stored, err := svc.store.GetSession(ctx, "stale")
	require.NoError(t, err)
	require.Equal(t, stale, stored)
}

func TestServiceReleasesSessionLocks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	for i := 0; i < 1000; i++ {
		_, err := svc.Advance(ctx, fmt.Sprintf("gone-%d", i))
		require.ErrorIs(t, err, models.ErrSessionNotFound)
	}
	require.Zero(t, svc.lockCount())

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.SelectOption(ctx, session.ID, i%2)
		}(i)
	}
	wg.Wait()
	require.Zero(t, svc.lockCount())

	require.NoError(t, svc.EndSession(ctx, session.ID))
	require.Zero(t, svc.lockCount())
}
