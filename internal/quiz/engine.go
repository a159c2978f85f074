// internal/quiz/engine.go
package quiz

import (
	"fmt"

	"quiz-widget/internal/models"
)

// Engine drives a session through a fixed question set. It holds no session
// state itself; Select and Advance are pure transitions over models.Session.
type Engine struct {
	questions []models.Question
}

// NewEngine validates and copies questions. An empty set is a configuration
// error and is rejected here rather than discovered mid-quiz.
func NewEngine(questions []models.Question) (*Engine, error) {
	if len(questions) == 0 {
		return nil, models.ErrNoQuestions
	}

	qs := make([]models.Question, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		qs[i] = q.Clone()
	}
	return &Engine{questions: qs}, nil
}

func (e *Engine) Len() int {
	return len(e.questions)
}

// Question returns a copy of the i-th question.
func (e *Engine) Question(i int) models.Question {
	return e.questions[i].Clone()
}

// Start returns the initial state, Active(0).
func (e *Engine) Start(id string) models.Session {
	return models.Session{ID: id}
}

// IsLastQuestion reports whether the next advance finishes the session.
func (e *Engine) IsLastQuestion(s models.Session) bool {
	return s.CurrentIndex == len(e.questions)-1
}

// Check rejects a session this engine could not have produced, such as one
// written by a deploy with a different question set.
func (e *Engine) Check(s models.Session) error {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(e.questions) {
		return fmt.Errorf("%w: question %d of %d", models.ErrSessionCorrupt, s.CurrentIndex+1, len(e.questions))
	}
	if s.Score < 0 || s.Score > len(e.questions) {
		return fmt.Errorf("%w: score %d of %d", models.ErrSessionCorrupt, s.Score, len(e.questions))
	}
	if s.HasSelection() && !e.questions[s.CurrentIndex].HasOption(*s.SelectedOption) {
		return fmt.Errorf("%w: option %d selected", models.ErrSessionCorrupt, *s.SelectedOption)
	}
	return nil
}

// Select records index as the chosen option for the current question.
// Re-selecting overwrites; nothing is scored until Advance.
func (e *Engine) Select(s models.Session, index int) (models.Session, error) {
	if err := e.Check(s); err != nil {
		return s, err
	}
	if s.Finished {
		return s, models.ErrSessionFinished
	}
	if !e.questions[s.CurrentIndex].HasOption(index) {
		return s, fmt.Errorf("%w: %d", models.ErrOptionOutOfRange, index)
	}

	next := s.Clone()
	next.SelectedOption = &index
	return next, nil
}

// Advance locks in the current selection. The last question flips the session
// to finished; any other moves to the next question with the selection cleared.
func (e *Engine) Advance(s models.Session) (models.Session, error) {
	if err := e.Check(s); err != nil {
		return s, err
	}
	if s.Finished {
		return s, models.ErrSessionFinished
	}
	if !s.HasSelection() {
		return s, models.ErrNoSelection
	}

	next := s.Clone()
	if *next.SelectedOption == e.questions[next.CurrentIndex].CorrectOptionIndex {
		next.Score++
	}

	if e.IsLastQuestion(next) {
		next.Finished = true
		return next, nil
	}

	next.CurrentIndex++
	next.SelectedOption = nil
	return next, nil
}

// State names where s sits in the Active(i)/Finished machine.
func (e *Engine) State(s models.Session) State {
	if s.Finished {
		return State{Phase: PhaseFinished, Index: len(e.questions)}
	}
	return State{Phase: PhaseActive, Index: s.CurrentIndex}
}

type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

type State struct {
	Phase Phase
	Index int
}

func (st State) String() string {
	if st.Phase == PhaseFinished {
		return "Finished"
	}
	return fmt.Sprintf("Active(%d)", st.Index)
}
