// internal/quiz/defaults.go
package quiz

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"quiz-widget/internal/models"
)

//go:embed questions.yaml
var defaultQuestionsYAML []byte

// DefaultQuestions returns the question set compiled into the widget.
func DefaultQuestions() ([]models.Question, error) {
	return ParseQuestions(defaultQuestionsYAML)
}

// ParseQuestions decodes a YAML list of questions.
func ParseQuestions(data []byte) ([]models.Question, error) {
	var questions []models.Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

// NewDefaultEngine builds an engine over DefaultQuestions.
func NewDefaultEngine() (*Engine, error) {
	questions, err := DefaultQuestions()
	if err != nil {
		return nil, err
	}
	return NewEngine(questions)
}
