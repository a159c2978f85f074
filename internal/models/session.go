// internal/models/session.go
package models

// Session is one run-through of the quiz owned by a single widget instance.
// It is a plain value: transitions take a Session and return the next one.
type Session struct {
	ID             string `json:"id"`
	CurrentIndex   int    `json:"current_index"`
	SelectedOption *int   `json:"selected_option"`
	Score          int    `json:"score"`
	Finished       bool   `json:"finished"`
}

// HasSelection reports whether an option is chosen for the current question.
func (s Session) HasSelection() bool {
	return s.SelectedOption != nil
}

// IsSelected reports whether index is the chosen option.
func (s Session) IsSelected(index int) bool {
	return s.SelectedOption != nil && *s.SelectedOption == index
}

// Clone detaches the selection pointer so the copy can be changed freely.
func (s Session) Clone() Session {
	if s.SelectedOption != nil {
		v := *s.SelectedOption
		s.SelectedOption = &v
	}
	return s
}
