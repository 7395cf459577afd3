package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"energyportal/internal/activity"
	"energyportal/internal/api"
	"energyportal/internal/backend"
)

type ActivityRecorder interface {
	Record(ctx context.Context, entries ...activity.Entry) error
}

// Handlers serve admin-only routes; the router puts them behind RequireAdmin.
type Handlers struct {
	Backend  backend.Client
	Activity ActivityRecorder
	Log      logrus.FieldLogger
}

func (h Handlers) ListAuditorImages(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	images, err := h.Backend.WithToken(s.BackendToken).ListAuditorImages(r.Context())
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"images": images})
}

func (h Handlers) UpdateAuditor(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	n := strings.TrimSpace(chi.URLParam(r, "bookingNumber"))
	if n == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing booking number")
		return
	}

	var req backend.UpdateAuditorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.Description = strings.TrimSpace(req.Description)
	if !validImageURL(req.ImageURL) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "imageUrl must be an absolute http(s) url")
		return
	}

	if err := h.Backend.WithToken(s.BackendToken).UpdateAuditor(r.Context(), n, req); err != nil {
		h.Log.WithError(err).WithField("booking_number", n).Warn("update auditor failed")
		api.WriteBackendError(w, err)
		return
	}

	if err := h.Activity.Record(r.Context(), activity.Entry{
		BookingNumber: n,
		Kind:          activity.KindAuditorUpdated,
		Summary:       "Auditor updated",
		Actor:         s.UserID,
		OccurredAt:    time.Now(),
		Data:          req,
	}); err != nil {
		h.Log.WithError(err).WithField("booking_number", n).Error("record activity")
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"updated": true, "auditor": req})
}

func validImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
