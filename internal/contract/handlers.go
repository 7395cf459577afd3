package contract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"energyportal/internal/activity"
	"energyportal/internal/api"
	"energyportal/internal/backend"
	"energyportal/internal/session"
	"energyportal/internal/signing"
)

const maxEventBytes = 64 << 10

type ActivityRecorder interface {
	Record(ctx context.Context, entries ...activity.Entry) error
}

type Handlers struct {
	Backend  backend.Client
	Activity ActivityRecorder
	Log      logrus.FieldLogger
}

type acceptResponse struct {
	Accepted bool   `json:"accepted"`
	Redirect string `json:"redirect"`
}

// Get returns the signing session for the booking's current contract.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	s, n, ok := contractRequest(w, r, false)
	if !ok {
		return
	}

	c, err := h.Backend.WithToken(s.BackendToken).GetContract(r.Context(), n)
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, c)
}

func (h Handlers) GetByID(w http.ResponseWriter, r *http.Request) {
	s, n, ok := contractRequest(w, r, true)
	if !ok {
		return
	}

	c, err := h.Backend.WithToken(s.BackendToken).GetContractByID(r.Context(), n, chi.URLParam(r, "contractId"))
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, c)
}

func (h Handlers) Accept(w http.ResponseWriter, r *http.Request) {
	s, n, ok := contractRequest(w, r, true)
	if !ok {
		return
	}
	contractID := chi.URLParam(r, "contractId")

	if err := h.accept(r.Context(), s, n, contractID); err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, acceptResponse{Accepted: true, Redirect: bookingRedirect(n)})
}

type eventResponse struct {
	Event    signing.EventType `json:"event"`
	Accepted bool              `json:"accepted"`
	Redirect string            `json:"redirect,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Events receives a postMessage the browser forwarded from the embedded
// signing frame and acts on it.
func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	s, n, ok := contractRequest(w, r, true)
	if !ok {
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION_FAILED", "event too large")
		return
	}
	ev, err := signing.Parse(raw)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	l := &eventListener{h: h, s: s, bookingNumber: n, contractID: chi.URLParam(r, "contractId")}
	l.out.Event = ev.Type()
	if err := signing.Dispatch(r.Context(), ev, l); err != nil {
		var pe *signing.ParseError
		if errors.As(err, &pe) {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", pe.Error())
			return
		}
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, l.out)
}

func (h Handlers) accept(ctx context.Context, s *session.Session, bookingNumber, contractID string, extra ...activity.Entry) error {
	now := time.Now()
	if err := h.Backend.WithToken(s.BackendToken).AcceptContract(ctx, bookingNumber, contractID); err != nil {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"booking_number": bookingNumber,
			"contract_id":    contractID,
		}).Warn("accept contract failed")
		h.record(ctx, append(extra, activity.Entry{
			BookingNumber: bookingNumber,
			Kind:          activity.KindAcceptFailed,
			Summary:       "Contract acceptance failed: " + backend.UserMessage(err),
			Actor:         actor(s),
			OccurredAt:    now,
			Data:          map[string]any{"contractId": contractID},
		})...)
		return err
	}

	h.record(ctx, append(extra, activity.Entry{
		BookingNumber: bookingNumber,
		Kind:          activity.KindContractAccepted,
		Summary:       "Contract accepted",
		Actor:         actor(s),
		OccurredAt:    now,
		Data:          map[string]any{"contractId": contractID},
	})...)
	return nil
}

// record never fails the request; the backend is the source of truth.
func (h Handlers) record(ctx context.Context, entries ...activity.Entry) {
	if err := h.Activity.Record(ctx, entries...); err != nil {
		h.Log.WithError(err).WithField("entries", len(entries)).Error("record activity")
	}
}

type eventListener struct {
	h             Handlers
	s             *session.Session
	bookingNumber string
	contractID    string
	out           eventResponse
}

func (l *eventListener) entry(kind activity.Kind, summary, documentID string) activity.Entry {
	return activity.Entry{
		BookingNumber: l.bookingNumber,
		Kind:          kind,
		Summary:       summary,
		Actor:         actor(l.s),
		OccurredAt:    time.Now(),
		Data:          map[string]any{"contractId": l.contractID, "documentId": documentID},
	}
}

func (l *eventListener) DocumentLoaded(ctx context.Context, e signing.DocumentLoaded) error {
	l.h.record(ctx, l.entry(activity.KindSigningLoaded, "Signing document loaded", e.DocumentID))
	return nil
}

func (l *eventListener) DocumentCompleted(ctx context.Context, e signing.DocumentCompleted) error {
	signed := l.entry(activity.KindSigningCompleted, "Signing document completed", e.DocumentID)
	if err := l.h.accept(ctx, l.s, l.bookingNumber, l.contractID, signed); err != nil {
		return err
	}
	l.out.Accepted = true
	l.out.Redirect = bookingRedirect(l.bookingNumber)
	return nil
}

func (l *eventListener) DocumentException(ctx context.Context, e signing.DocumentException) error {
	l.h.Log.WithFields(logrus.Fields{
		"booking_number": l.bookingNumber,
		"contract_id":    l.contractID,
		"document_id":    e.DocumentID,
	}).Warn("signing session exception: " + e.Message)
	l.h.record(ctx, l.entry(activity.KindSigningFailed, "Signing error: "+e.Message, e.DocumentID))
	l.out.Error = e.Message
	return nil
}

func actor(s *session.Session) string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.Email
}

func bookingRedirect(bookingNumber string) string {
	return "/bookings/" + bookingNumber
}

func contractRequest(w http.ResponseWriter, r *http.Request, needID bool) (*session.Session, string, bool) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return nil, "", false
	}
	n := strings.TrimSpace(chi.URLParam(r, "bookingNumber"))
	if n == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing booking number")
		return nil, "", false
	}
	if needID && strings.TrimSpace(chi.URLParam(r, "contractId")) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing contract id")
		return nil, "", false
	}
	return s, n, true
}
