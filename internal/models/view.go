// internal/models/view.go
package models

// View is the presentation contract: everything a Card/Button based front end
// needs to draw the widget for one session.
type View struct {
	Loading bool     `json:"loading"`
	Header  Header   `json:"header"`
	Card    *Card    `json:"card,omitempty"`
	Results *Results `json:"results,omitempty"`
}

type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Card mirrors the host shell's card primitive.
type Card struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []Button `json:"options,omitempty"`
	Action      *Button  `json:"action,omitempty"`
}

// Button is an activatable primitive. Command and Index identify what a click
// on it means; nothing else travels with the event.
type Button struct {
	Label    string `json:"label"`
	Command  string `json:"command"`
	Index    int    `json:"index"`
	Selected bool   `json:"selected"`
	Disabled bool   `json:"disabled"`
}

type Results struct {
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Commands a button can emit.
const (
	CommandSelectOption = "select_option"
	CommandAdvance      = "advance"
)
