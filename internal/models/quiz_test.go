package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestionValidate(t *testing.T) {
	t.Parallel()

	valid := Question{Prompt: "p", Options: []string{"a", "b"}, CorrectOptionIndex: 1}
	require.NoError(t, valid.Validate())

	tests := map[string]Question{
		"empty prompt":      {Prompt: " ", Options: []string{"a", "b"}},
		"one option":        {Prompt: "p", Options: []string{"a"}},
		"blank option":      {Prompt: "p", Options: []string{"a", ""}},
		"negative correct":  {Prompt: "p", Options: []string{"a", "b"}, CorrectOptionIndex: -1},
		"correct too large": {Prompt: "p", Options: []string{"a", "b"}, CorrectOptionIndex: 2},
	}
	for name, q := range tests {
		q := q
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, q.Validate(), ErrInvalidQuestion)
		})
	}
}

func TestSessionClone(t *testing.T) {
	t.Parallel()
	sel := 1
	s := Session{ID: "s", SelectedOption: &sel}
	c := s.Clone()
	*c.SelectedOption = 0
	require.Equal(t, 1, *s.SelectedOption)
	require.True(t, s.IsSelected(1))
	require.False(t, Session{}.HasSelection())
}
