package public

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/langowen/fxconverter/internal/converter/presenter"
	"github.com/langowen/fxconverter/internal/converter/service"
	"github.com/langowen/fxconverter/internal/entities"
)

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(r.Context(), sessionID(r))
	if err != nil {
		slog.Error("failed to load session", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	RespondWithPage(w, http.StatusOK, presenter.NewPage(sess, presenter.DefaultForm(), nil, ""))
}

// Convert handles the form submit. Fetch and lookup failures render the
// unified notice with the existing history; bad input is a form error.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionID(r)

	if err := r.ParseForm(); err != nil {
		RespondWithError(w, http.StatusBadRequest, "malformed form", err.Error())
		return
	}

	in, form := s.readForm(r.PostForm.Get("from"), r.PostForm.Get("to"), r.PostForm.Get("amount"))
	if form.Error != "" {
		s.renderCurrent(w, r, http.StatusBadRequest, form, "")
		return
	}

	res, err := s.service.Convert(ctx, id, in.request())
	switch {
	case err == nil:
		RespondWithPage(w, http.StatusOK, presenter.NewPage(res.Session, form, presenter.NewResult(res.Record, res.LastUpdate), ""))
	case errors.Is(err, entities.ErrInvalidInput):
		form.Error = "invalid input"
		s.renderCurrent(w, r, http.StatusBadRequest, form, "")
	case errors.Is(err, entities.ErrNetworkFailure), errors.Is(err, entities.ErrDataUnavailable):
		s.renderCurrent(w, r, http.StatusOK, form, presenter.ErrorNotice)
	default:
		slog.Error("conversion failed", "kind", service.ErrorKind(err), "error", err)
		s.renderCurrent(w, r, http.StatusInternalServerError, form, presenter.ErrorNotice)
	}
}

func (s *Server) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.EndSession(r.Context(), sessionID(r)); err != nil {
		slog.Error("failed to end session", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "failed to end session")
		return
	}

	s.cookie.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderCurrent(w http.ResponseWriter, r *http.Request, code int, form presenter.Form, notice string) {
	sess, err := s.service.Session(r.Context(), sessionID(r))
	if err != nil {
		slog.Error("failed to load session", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	RespondWithPage(w, code, presenter.NewPage(sess, form, nil, notice))
}
