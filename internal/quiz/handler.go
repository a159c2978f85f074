// internal/quiz/handler.go
package quiz

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quiz-widget/internal/auth"
	"quiz-widget/internal/models"
	"quiz-widget/internal/widget"
)

type Handler struct {
	service      *Service
	auth         *auth.Service
	renderer     *widget.Renderer
	cookieSecure bool
}

func NewHandler(service *Service, authService *auth.Service, renderer *widget.Renderer, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		auth:         authService,
		renderer:     renderer,
		cookieSecure: cookieSecure,
	}
}

type sessionResponse struct {
	Token   string         `json:"token,omitempty"`
	Session models.Session `json:"session"`
	View    models.View    `json:"view"`
}

type selectRequest struct {
	Index *int `json:"index"`
}

// RegisterRoutes mounts the JSON API and the HTML widget. sessionMW must put
// the session id into the request context.
func (h *Handler) RegisterRoutes(router *mux.Router, sessionMW mux.MiddlewareFunc) {
	router.HandleFunc("/api/session", h.StartSession).Methods("POST", "OPTIONS")
	router.Handle("/api/session", sessionMW(http.HandlerFunc(h.GetSession))).Methods("GET")
	router.Handle("/api/session", sessionMW(http.HandlerFunc(h.EndSession))).Methods("DELETE")
	router.Handle("/api/session/select", sessionMW(http.HandlerFunc(h.SelectOption))).Methods("POST", "OPTIONS")
	router.Handle("/api/session/advance", sessionMW(http.HandlerFunc(h.Advance))).Methods("POST", "OPTIONS")

	router.HandleFunc("/", h.Page).Methods("GET")
	router.HandleFunc("/select", h.SelectForm).Methods("POST")
	router.HandleFunc("/advance", h.AdvanceForm).Methods("POST")
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.StartSession(r.Context())
	if err != nil {
		slog.Error("failed to start session", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.auth.IssueToken(session.ID)
	if err != nil {
		slog.Error("failed to issue token", "session_id", session.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:   token,
		Session: session,
		View:    h.service.Render(session),
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromContext(r.Context())

	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, View: h.service.Render(session)})
}

func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromContext(r.Context())

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Index == nil {
		http.Error(w, "index is required", http.StatusBadRequest)
		return
	}

	session, err := h.service.SelectOption(r.Context(), sessionID, *req.Index)
	if err != nil {
		writeError(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, View: h.service.Render(session)})
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromContext(r.Context())

	session, err := h.service.Advance(r.Context(), sessionID)
	if err != nil {
		writeError(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, View: h.service.Render(session)})
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromContext(r.Context())

	if err := h.service.EndSession(r.Context(), sessionID); err != nil {
		writeError(w, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Page renders the HTML widget, starting a session when the request carries
// none that is still alive.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	session, ok := h.cookieSession(r)
	if !ok {
		var err error
		session, err = h.service.StartSession(r.Context())
		if err != nil {
			slog.Error("failed to start session", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := h.setSessionCookie(w, session.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, h.service.Render(session)); err != nil {
		slog.Error("failed to render widget", "session_id", session.ID, "error", err)
	}
}

func (h *Handler) SelectForm(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Invalid option", http.StatusBadRequest)
		return
	}
	h.formCommand(w, r, func(id string) error {
		_, err := h.service.SelectOption(r.Context(), id, index)
		return err
	})
}

func (h *Handler) AdvanceForm(w http.ResponseWriter, r *http.Request) {
	h.formCommand(w, r, func(id string) error {
		_, err := h.service.Advance(r.Context(), id)
		return err
	})
}

// formCommand runs a command for the cookie session and sends the browser back
// to the page. Rejected advances are not errors for a form: the page simply
// shows the unchanged state.
func (h *Handler) formCommand(w http.ResponseWriter, r *http.Request, run func(id string) error) {
	session, ok := h.cookieSession(r)
	if ok {
		err := run(session.ID)
		switch {
		case err == nil,
			errors.Is(err, models.ErrNoSelection),
			errors.Is(err, models.ErrSessionFinished),
			errors.Is(err, models.ErrNotReady):
		default:
			writeError(w, session.ID, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) cookieSession(r *http.Request) (models.Session, bool) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		return models.Session{}, false
	}
	sessionID, err := h.auth.ParseToken(cookie.Value)
	if err != nil {
		return models.Session{}, false
	}
	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, models.ErrSessionNotFound) && !errors.Is(err, models.ErrSessionCorrupt) {
			slog.Error("failed to load session", "session_id", sessionID, "error", err)
		}
		return models.Session{}, false
	}
	return session, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) error {
	token, err := h.auth.IssueToken(sessionID)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.auth.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Frames embedded cross-site only get the cookie back with SameSite=None,
	// which browsers accept only on secure cookies.
	if h.cookieSecure {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
	return nil
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrOptionOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoSelection), errors.Is(err, models.ErrSessionFinished):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrSessionCorrupt):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, sessionID string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "session_id", sessionID, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
