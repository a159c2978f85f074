package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"quiz-widget/internal/models"
)

func TestMemoryRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.GetSession(ctx, "nope")
	require.ErrorIs(t, err, models.ErrSessionNotFound)

	require.Error(t, repo.SaveSession(ctx, models.Session{}))

	selected := 2
	session := models.Session{ID: "s1", SelectedOption: &selected, Score: 1}
	require.NoError(t, repo.SaveSession(ctx, session))

	// Mutating the caller's copy must not reach the stored one.
	selected = 0
	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 2, *got.SelectedOption)
	require.Equal(t, 1, got.Score)

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	_, err = repo.GetSession(ctx, "s1")
	require.ErrorIs(t, err, models.ErrSessionNotFound)
}
