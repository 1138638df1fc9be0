// internal/server/handlers.go
package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"nutrifacil/internal/flow"
	"nutrifacil/internal/models"
	"nutrifacil/internal/session"
	"nutrifacil/internal/views"
)

// pathFor is where the browser lands for screen. Welcome lives at the root.
func pathFor(screen flow.Screen) string {
	if screen == flow.ScreenWelcome {
		return "/"
	}
	return "/" + screen.String()
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectCurrent sends the browser to wherever the session is now.
func redirectCurrent(w http.ResponseWriter, r *http.Request, current *flow.Session) {
	redirect(w, r, pathFor(current.Screen()))
}

// render draws the session's current screen. An alert is shown once and then
// cleared.
func (s *Server) render(w http.ResponseWriter, current *flow.Session, status int, notice string) {
	snapshot := current.Snapshot()
	data := views.NewPageData(snapshot)
	data.Notice = notice

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, snapshot.Screen, data); err != nil {
		s.logger.Error("rendering page", "screen", snapshot.Screen.String(), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if snapshot.Alert != "" {
		current.DismissAlert()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	s.render(w, session.FromContext(r.Context()), http.StatusOK, "")
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := current.Begin(); err != nil {
		s.logger.Debug("ignoring start", "session_id", current.ID(), "error", err)
	}
	redirectCurrent(w, r, current)
}

// handleFixed renders a non-lateral screen only while the session is on it.
func (s *Server) handleFixed(screen flow.Screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := session.FromContext(r.Context())
		if current.Screen() != screen {
			redirectCurrent(w, r, current)
			return
		}
		s.render(w, current, http.StatusOK, "")
	}
}

func (s *Server) handleLateral(screen flow.Screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := session.FromContext(r.Context())
		if err := current.Navigate(screen); err != nil {
			redirectCurrent(w, r, current)
			return
		}
		s.render(w, current, http.StatusOK, "")
	}
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	submitted, err := current.Advance(r.PostForm)
	switch {
	case errors.Is(err, flow.ErrStepIncomplete):
		notice := "Preencha os campos obrigatórios."
		if missing := current.Snapshot().Missing; len(missing) > 0 {
			notice = "Preencha: " + strings.Join(missing, ", ") + "."
		}
		s.render(w, current, http.StatusUnprocessableEntity, notice)
		return
	case err != nil:
		redirectCurrent(w, r, current)
		return
	}

	if submitted {
		s.startGeneration(current)
		redirect(w, r, pathFor(flow.ScreenGenerating))
		return
	}
	redirectCurrent(w, r, current)
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	current.Retreat(r.PostForm)
	redirectCurrent(w, r, current)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	current.CancelGeneration()
	redirectCurrent(w, r, current)
}

func (s *Server) handleShopping(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := current.Navigate(flow.ScreenDiet); err != nil {
		redirectCurrent(w, r, current)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, views.PageShoppingList, views.NewPageData(current.Snapshot())); err != nil {
		s.logger.Error("rendering shopping list", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleSubstitute(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := current.Navigate(flow.ScreenDiet); err != nil {
		redirectCurrent(w, r, current)
		return
	}

	mealID := r.FormValue("meal_id")
	_, err := current.SubstituteMeal(r.Context(), s.gateway, mealID)
	switch {
	case errors.Is(err, flow.ErrMealNotFound):
		s.render(w, current, http.StatusNotFound, "Refeição não encontrada.")
		return
	case errors.Is(err, flow.ErrSubstitutionBusy):
		s.render(w, current, http.StatusConflict, "Aguarde a sugestão anterior.")
		return
	case err != nil:
		redirectCurrent(w, r, current)
		return
	}
	redirect(w, r, "/diet#meal-"+mealID)
}

func (s *Server) handleCloseSubstitution(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	current.CloseSubstitution()
	redirect(w, r, pathFor(flow.ScreenDiet))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := current.Navigate(flow.ScreenChat); err != nil {
		redirectCurrent(w, r, current)
		return
	}

	_, err := current.Transcript().Send(r.Context(), s.gateway, r.FormValue("message"))
	switch {
	case errors.Is(err, flow.ErrChatBusy):
		s.render(w, current, http.StatusConflict, "Aguarde a resposta anterior.")
		return
	case errors.Is(err, flow.ErrEmptyMessage):
	case err != nil:
		s.logger.Warn("chat reply failed", "session_id", current.ID(), "error", err)
	}
	redirect(w, r, pathFor(flow.ScreenChat))
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	if err := current.Regenerate(); err != nil {
		redirectCurrent(w, r, current)
		return
	}
	s.startGeneration(current)
	redirect(w, r, pathFor(flow.ScreenGenerating))
}

func (s *Server) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	current.EditProfile()
	redirectCurrent(w, r, current)
}

func (s *Server) handleSessionAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session.FromContext(r.Context()).Snapshot())
}

type callsResponse struct {
	Recent  []models.CallRecord  `json:"recent"`
	Summary []models.CallSummary `json:"summary"`
}

func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		writeError(w, http.StatusNotFound, "call log disabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	recent, err := s.calls.RecentCalls(r.Context(), limit)
	if err != nil {
		s.logger.Error("reading recent calls", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read call log")
		return
	}
	summary, err := s.calls.Summary(r.Context())
	if err != nil {
		s.logger.Error("reading call summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read call log")
		return
	}

	writeJSON(w, http.StatusOK, callsResponse{Recent: recent, Summary: summary})
}
