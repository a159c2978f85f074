// internal/models/quiz.go
package models

import (
	"fmt"
	"strings"
)

// Question is one multiple-choice entry of a quiz. Questions are compiled in
// and never mutated once an engine holds them.
type Question struct {
	Prompt             string   `json:"prompt" yaml:"prompt"`
	Options            []string `json:"options" yaml:"options"`
	CorrectOptionIndex int      `json:"correct_option_index" yaml:"correct_option_index"`
}

// Validate reports the first structural problem with the question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %q needs at least 2 options, has %d", ErrInvalidQuestion, q.Prompt, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: %q option %d is empty", ErrInvalidQuestion, q.Prompt, i)
		}
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return fmt.Errorf("%w: %q correct option %d out of range", ErrInvalidQuestion, q.Prompt, q.CorrectOptionIndex)
	}
	return nil
}

// HasOption reports whether index addresses one of the question's options.
func (q Question) HasOption(index int) bool {
	return index >= 0 && index < len(q.Options)
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	return q
}
