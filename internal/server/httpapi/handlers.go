package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/reminders"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
)

type errorResponse struct {
	Error string `json:"error"`
}

type previewResponse struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

type notificationsResponse struct {
	Notifications []reminders.Notification `json:"notifications"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrCycleInProgress):
		return http.StatusConflict
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	buf, err := ffjson.Marshal(v)
	if err != nil {
		s.logger.Error(context.Background(), "cannot serialize response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf) // nolint: errcheck
}

func (s *Server) sendError(w http.ResponseWriter, code int, msg string) {
	s.sendJSON(w, code, &errorResponse{Error: msg})
}

func (s *Server) sendServiceError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = common.ErrorInternal.Error()
	}
	s.sendError(w, code, msg)
}

func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	s.logger.Info(r.Context(), "Manual reminder cycle requested", "remote", r.RemoteAddr)

	res, err := s.reminders.Trigger(r.Context())
	if err != nil {
		s.sendServiceError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, &res)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	borrowerID := mux.Vars(r)["borrowerID"]

	email, err := s.reminders.Preview(r.Context(), borrowerID)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, &previewResponse{Subject: email.Subject, Text: email.Text, HTML: email.HTML})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	borrowerID := mux.Vars(r)["borrowerID"]

	items, err := s.reminders.Notifications(r.Context(), borrowerID)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}
	if items == nil {
		items = []reminders.Notification{}
	}
	s.sendJSON(w, http.StatusOK, &notificationsResponse{Notifications: items})
}

func (s *Server) handleRunRetention(w http.ResponseWriter, r *http.Request) {
	res, err := s.retention.Run(r.Context())
	if err != nil {
		s.sendServiceError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, &res)
}
