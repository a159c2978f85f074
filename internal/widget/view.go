// Package widget turns a quiz session into the Card/Button view the host shell
// draws, and renders that view as an HTML page.
package widget

import (
	"fmt"

	"quiz-widget/internal/models"
)

const (
	DefaultSubtitle    = "Test your knowledge about hellno's recent casts"
	ResultsTitle       = "Quiz Results"
	ResultsDescription = "Thanks for playing!"
	PerfectMessage     = "Perfect score! You're a true hellno fan!"
	ThanksMessage      = "Thanks for playing! Check out more casts from hellno."

	NextLabel    = "Next Question"
	ResultsLabel = "See Results"
)

// Source is the read side of the quiz engine the view needs.
type Source interface {
	Len() int
	Question(i int) models.Question
	IsLastQuestion(s models.Session) bool
}

// NewHeader builds the header shown above the card.
func NewHeader(projectTitle string) models.Header {
	return models.Header{
		Title:    projectTitle + " Quiz",
		Subtitle: DefaultSubtitle,
	}
}

// Build derives the view for s. Until the host is ready only the loading
// placeholder is produced.
func Build(src Source, s models.Session, ready bool, header models.Header) models.View {
	if !ready {
		return models.View{Loading: true}
	}

	view := models.View{Header: header}
	if s.Finished {
		total := src.Len()
		msg := ThanksMessage
		if s.Score == total {
			msg = PerfectMessage
		}
		view.Card = &models.Card{
			Title:       ResultsTitle,
			Description: ResultsDescription,
		}
		view.Results = &models.Results{
			Score:   s.Score,
			Total:   total,
			Message: msg,
		}
		return view
	}

	q := src.Question(s.CurrentIndex)
	options := make([]models.Button, len(q.Options))
	for i, opt := range q.Options {
		options[i] = models.Button{
			Label:    opt,
			Command:  models.CommandSelectOption,
			Index:    i,
			Selected: s.IsSelected(i),
		}
	}

	label := NextLabel
	if src.IsLastQuestion(s) {
		label = ResultsLabel
	}

	view.Card = &models.Card{
		Title:       fmt.Sprintf("Question %d", s.CurrentIndex+1),
		Description: q.Prompt,
		Options:     options,
		Action: &models.Button{
			Label:    label,
			Command:  models.CommandAdvance,
			Disabled: !s.HasSelection(),
		},
	}
	return view
}
