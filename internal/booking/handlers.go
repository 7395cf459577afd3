package booking

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"energyportal/internal/activity"
	"energyportal/internal/api"
	"energyportal/internal/backend"
	"energyportal/internal/fetchguard"
	"energyportal/internal/progress"
	"energyportal/internal/session"
)

type ActivityLog interface {
	ListByBooking(ctx context.Context, bookingNumber string) ([]activity.Entry, error)
}

type Handlers struct {
	Backend  backend.Client
	Activity ActivityLog
	Guard    *fetchguard.Guard
	Log      logrus.FieldLogger
}

type viewResponse struct {
	Booking  *progress.Booking `json:"booking"`
	Progress progress.Summary  `json:"progress"`
}

// View returns the booking snapshot together with its derived progress.
// Only the newest view of a booking per session is answered; an older
// duplicate still in flight gets 409.
func (h Handlers) View(w http.ResponseWriter, r *http.Request) {
	s, n, ok := bookingRequest(w, r)
	if !ok {
		return
	}

	ctx, done := h.Guard.Begin(r.Context(), viewKey(s, n))
	defer done()

	b, err := h.Backend.WithToken(s.BackendToken).GetBooking(ctx, n)
	if fetchguard.Superseded(ctx) {
		api.WriteError(w, http.StatusConflict, "SUPERSEDED", "a newer booking request replaced this one")
		return
	}
	if err != nil {
		h.Log.WithError(err).WithField("booking_number", n).Warn("get booking failed")
		api.WriteBackendError(w, err)
		return
	}

	h.checkStage(b)
	api.WriteJSON(w, http.StatusOK, viewResponse{Booking: b, Progress: progress.Summarize(*b)})
}

func (h Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	s, n, ok := bookingRequest(w, r)
	if !ok {
		return
	}

	b, err := h.Backend.WithToken(s.BackendToken).GetBooking(r.Context(), n)
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	h.checkStage(b)
	api.WriteJSON(w, http.StatusOK, progress.Summarize(*b))
}

func (h Handlers) RecommendedVideos(w http.ResponseWriter, r *http.Request) {
	s, n, ok := bookingRequest(w, r)
	if !ok {
		return
	}

	videos, err := h.Backend.WithToken(s.BackendToken).RecommendedVideos(r.Context(), n)
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// ListActivity lists the local activity log. Customers must still be able to
// read the booking through the backend; admins skip that check.
func (h Handlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	s, n, ok := bookingRequest(w, r)
	if !ok {
		return
	}

	if !s.IsAdmin() {
		if _, err := h.Backend.WithToken(s.BackendToken).GetBooking(r.Context(), n); err != nil {
			api.WriteBackendError(w, err)
			return
		}
	}

	entries, err := h.Activity.ListByBooking(r.Context(), n)
	if err != nil {
		h.Log.WithError(err).WithField("booking_number", n).Error("list activity")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

// ServiceDetail is public; the backend serves catalogue entries without a token.
func (h Handlers) ServiceDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing service id")
		return
	}

	svc, err := h.Backend.GetService(r.Context(), id)
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, svc)
}

// checkStage flags snapshots whose stage is outside the known lifecycle.
// Such bookings still render, with zero progress and nothing completed.
func (h Handlers) checkStage(b *progress.Booking) {
	if _, err := progress.ParseStage(string(b.CurrentStage)); err != nil {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"booking_number": b.BookingNumber,
			"stage":          string(b.CurrentStage),
		}).Warn("backend returned unknown booking stage")
	}
}

func viewKey(s *session.Session, bookingNumber string) string {
	return s.ID + "/booking-view/" + bookingNumber
}

func bookingRequest(w http.ResponseWriter, r *http.Request) (*session.Session, string, bool) {
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
	return s, n, true
}
