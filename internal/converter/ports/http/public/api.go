package public

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/langowen/fxconverter/internal/converter/presenter"
	"github.com/langowen/fxconverter/internal/converter/service"
	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
)

const maxBodyBytes = 1 << 16

type convertResponse struct {
	Record     entities.HistoryRecord `json:"record"`
	Result     presenter.Result       `json:"result"`
	FromCache  bool                   `json:"from_cache"`
	State      session.State          `json:"state"`
	HistoryLen int                    `json:"history_len"`
}

func (s *Server) Currencies(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(w, http.StatusOK, entities.Currencies)
}

func (s *Server) ConvertJSON(w http.ResponseWriter, r *http.Request) {
	var in convertInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body", Kind: "invalid_input"})
		return
	}

	if err := s.validate.Struct(in); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err), Kind: "invalid_input"})
		return
	}

	res, err := s.service.Convert(r.Context(), sessionID(r), in.request())
	switch {
	case err == nil:
		RespondWithJSON(w, http.StatusOK, convertResponse{
			Record:     res.Record,
			Result:     *presenter.NewResult(res.Record, res.LastUpdate),
			FromCache:  res.FromCache,
			State:      res.Session.State(),
			HistoryLen: res.Session.Len(),
		})
	case errors.Is(err, entities.ErrInvalidInput):
		RespondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Kind: service.ErrorKind(err)})
	case errors.Is(err, entities.ErrNetworkFailure), errors.Is(err, entities.ErrDataUnavailable):
		RespondWithJSON(w, http.StatusBadGateway, errorResponse{Error: presenter.ErrorNotice, Kind: service.ErrorKind(err)})
	default:
		slog.Error("conversion failed", "error", err)
		RespondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: presenter.ErrorNotice, Kind: service.ErrorKind(err)})
	}
}

func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(r.Context(), sessionID(r))
	if err != nil {
		slog.Error("failed to load session", "error", err)
		RespondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session", Kind: service.ErrorKind(err)})
		return
	}

	RespondWithJSON(w, http.StatusOK, presenter.NewHistory(sess))
}
