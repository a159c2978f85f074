package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quiz-widget/internal/models"
)

func twoQuestions() []models.Question {
	return []models.Question{
		{Prompt: "First?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 1},
		{Prompt: "Second?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 1},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(twoQuestions())
	require.NoError(t, err)
	return engine
}

func mustSelect(t *testing.T, e *Engine, s models.Session, index int) models.Session {
	t.Helper()
	next, err := e.Select(s, index)
	require.NoError(t, err)
	return next
}

func mustAdvance(t *testing.T, e *Engine, s models.Session) models.Session {
	t.Helper()
	next, err := e.Advance(s)
	require.NoError(t, err)
	return next
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("rejects an empty question set", func(t *testing.T) {
		t.Parallel()
		_, err := NewEngine(nil)
		require.ErrorIs(t, err, models.ErrNoQuestions)
	})

	t.Run("rejects a malformed question", func(t *testing.T) {
		t.Parallel()
		qs := twoQuestions()
		qs[1].CorrectOptionIndex = 4
		_, err := NewEngine(qs)
		require.ErrorIs(t, err, models.ErrInvalidQuestion)
		require.Contains(t, err.Error(), "question 2")
	})

	t.Run("copies the questions it is given", func(t *testing.T) {
		t.Parallel()
		qs := twoQuestions()
		engine, err := NewEngine(qs)
		require.NoError(t, err)

		qs[0].Prompt = "changed"
		qs[0].Options[0] = "changed"
		require.Equal(t, "First?", engine.Question(0).Prompt)
		require.Equal(t, "a", engine.Question(0).Options[0])

		out := engine.Question(1)
		out.Options[1] = "changed"
		require.Equal(t, "b", engine.Question(1).Options[1])
	})
}

func TestEngineStart(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	s := engine.Start("s1")
	require.Equal(t, "s1", s.ID)
	require.Equal(t, 0, s.CurrentIndex)
	require.Nil(t, s.SelectedOption)
	require.Equal(t, 0, s.Score)
	require.False(t, s.Finished)
	require.Equal(t, "Active(0)", engine.State(s).String())
}

func TestEngineSelect(t *testing.T) {
	t.Parallel()

	t.Run("later selection overwrites earlier one", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := engine.Start("s")

		s = mustSelect(t, engine, s, 0)
		s = mustSelect(t, engine, s, 3)
		require.NotNil(t, s.SelectedOption)
		require.Equal(t, 3, *s.SelectedOption)
		require.Equal(t, 0, s.Score)
	})

	t.Run("re-selecting the same option is a no-op", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		once := mustSelect(t, engine, engine.Start("s"), 2)
		twice := mustSelect(t, engine, once, 2)
		require.Equal(t, once, twice)
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		first := mustSelect(t, engine, engine.Start("s"), 1)
		_ = mustSelect(t, engine, first, 2)
		require.Equal(t, 1, *first.SelectedOption)
	})

	t.Run("rejects an out of range index and keeps state", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := mustSelect(t, engine, engine.Start("s"), 1)

		for _, idx := range []int{-1, 4, 100} {
			next, err := engine.Select(s, idx)
			require.ErrorIs(t, err, models.ErrOptionOutOfRange)
			require.Equal(t, s, next)
		}
	})

	t.Run("rejects selection once finished", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := engine.Start("s")
		for i := 0; i < engine.Len(); i++ {
			s = mustAdvance(t, engine, mustSelect(t, engine, s, 0))
		}

		next, err := engine.Select(s, 1)
		require.ErrorIs(t, err, models.ErrSessionFinished)
		require.Equal(t, s, next)
	})
}

func TestEngineAdvance(t *testing.T) {
	t.Parallel()

	t.Run("all correct answers score full marks", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := engine.Start("s")

		s = mustAdvance(t, engine, mustSelect(t, engine, s, 1))
		require.False(t, s.Finished)
		s = mustAdvance(t, engine, mustSelect(t, engine, s, 1))

		require.True(t, s.Finished)
		require.Equal(t, 2, s.Score)
		require.Equal(t, "Finished", engine.State(s).String())
	})

	t.Run("one wrong answer scores one", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := engine.Start("s")

		s = mustAdvance(t, engine, mustSelect(t, engine, s, 0))
		s = mustAdvance(t, engine, mustSelect(t, engine, s, 1))

		require.True(t, s.Finished)
		require.Equal(t, 1, s.Score)
	})

	t.Run("advance without a selection is disallowed", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := engine.Start("s")

		next, err := engine.Advance(s)
		require.ErrorIs(t, err, models.ErrNoSelection)
		require.Equal(t, s, next)
	})

	t.Run("selection resets after each non-final advance", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := mustAdvance(t, engine, mustSelect(t, engine, engine.Start("s"), 2))

		require.Equal(t, 1, s.CurrentIndex)
		require.Nil(t, s.SelectedOption)
		require.Equal(t, "Active(1)", engine.State(s).String())
	})

	t.Run("advance after finished changes nothing", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s := engine.Start("s")
		s = mustAdvance(t, engine, mustSelect(t, engine, s, 1))
		s = mustAdvance(t, engine, mustSelect(t, engine, s, 1))

		next, err := engine.Advance(s)
		require.ErrorIs(t, err, models.ErrSessionFinished)
		require.Equal(t, s, next)
		require.Equal(t, 2, next.Score)
		require.Equal(t, 1, next.CurrentIndex)
	})
}

func TestEngineInvariants(t *testing.T) {
	t.Parallel()

	questions := []models.Question{
		{Prompt: "q1", Options: []string{"a", "b"}, CorrectOptionIndex: 0},
		{Prompt: "q2", Options: []string{"a", "b", "c"}, CorrectOptionIndex: 2},
		{Prompt: "q3", Options: []string{"a", "b"}, CorrectOptionIndex: 1},
		{Prompt: "q4", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 3},
		{Prompt: "q5", Options: []string{"a", "b"}, CorrectOptionIndex: 0},
	}
	engine, err := NewEngine(questions)
	require.NoError(t, err)

	// Every combination of "answer right" / "answer wrong" across the set.
	for mask := 0; mask < 1<<len(questions); mask++ {
		s := engine.Start("s")
		expected := 0
		for i, q := range questions {
			require.False(t, s.Finished, "finished before question %d", i)
			require.Equal(t, i, s.CurrentIndex)

			answer := (q.CorrectOptionIndex + 1) % len(q.Options)
			if mask&(1<<i) != 0 {
				answer = q.CorrectOptionIndex
				expected++
			}

			prevScore := s.Score
			s = mustAdvance(t, engine, mustSelect(t, engine, s, answer))
			require.GreaterOrEqual(t, s.Score, prevScore)
			require.LessOrEqual(t, s.Score, len(questions))
			if i < len(questions)-1 {
				require.Nil(t, s.SelectedOption)
			}
		}
		require.True(t, s.Finished)
		require.Equal(t, expected, s.Score)
	}
}

func TestEngineIsLastQuestion(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	s := engine.Start("s")
	require.False(t, engine.IsLastQuestion(s))
	s = mustAdvance(t, engine, mustSelect(t, engine, s, 0))
	require.True(t, engine.IsLastQuestion(s))
}

func TestEngineCheck(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	sel := func(i int) *int { return &i }

	valid := map[string]models.Session{
		"start":    engine.Start("s"),
		"selected": {ID: "s", CurrentIndex: 1, SelectedOption: sel(1), Score: 1},
		"finished": {ID: "s", CurrentIndex: 1, SelectedOption: sel(0), Score: 2, Finished: true},
	}
	for name, s := range valid {
		s := s
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.NoError(t, engine.Check(s))
		})
	}

	corrupt := map[string]models.Session{
		"index past the end":     {ID: "s", CurrentIndex: 4},
		"negative index":         {ID: "s", CurrentIndex: -1},
		"selection out of range": {ID: "s", CurrentIndex: 1, SelectedOption: sel(7)},
		"score above total":      {ID: "s", Score: 3},
		"finished past the end":  {ID: "s", CurrentIndex: 2, Finished: true},
	}
	for name, s := range corrupt {
		s := s
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, engine.Check(s), models.ErrSessionCorrupt)

			next, err := engine.Select(s, 0)
			require.ErrorIs(t, err, models.ErrSessionCorrupt)
			require.Equal(t, s, next)

			next, err = engine.Advance(s)
			require.ErrorIs(t, err, models.ErrSessionCorrupt)
			require.Equal(t, s, next)
		})
	}
}
