// internal/models/errors.go
package models

import "errors"

var (
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrOptionOutOfRange = errors.New("option index out of range")
	ErrNoSelection      = errors.New("no option selected")
	ErrSessionFinished  = errors.New("session already finished")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotReady         = errors.New("frame is not ready")
	ErrSessionCorrupt   = errors.New("session does not fit the question set")
)
