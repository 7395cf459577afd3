package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"energyportal/internal/api"
	"energyportal/internal/backend"
	"energyportal/internal/session"
	"energyportal/pkg/authtoken"
)

type SessionStore interface {
	Create(ctx context.Context, s session.Session) (*session.Session, error)
	Revoke(ctx context.Context, id string, now time.Time) error
}

type Handlers struct {
	Backend  backend.Client
	Sessions SessionStore
	Signer   authtoken.Signer
	Log      logrus.FieldLogger
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      backend.User `json:"user"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req backend.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "email and password are required")
		return
	}

	res, err := h.Backend.Login(r.Context(), req)
	if err != nil {
		h.Log.WithError(err).WithField("email", req.Email).Warn("backend login failed")
		api.WriteBackendError(w, err)
		return
	}
	if res.Token == "" {
		h.Log.WithField("email", req.Email).Error("backend login returned no token")
		api.WriteError(w, http.StatusBadGateway, "BACKEND_ERROR", "login response missing token")
		return
	}

	role := res.User.Role
	if role == "" {
		role = backend.RoleCustomer
	}
	email := res.User.Email
	if email == "" {
		email = req.Email
	}

	now := time.Now()
	issued, err := h.Signer.Issue(uuid.NewString(), res.User.ID, email, role, now)
	if err != nil {
		h.Log.WithError(err).Error("issue session token")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	if _, err := h.Sessions.Create(r.Context(), session.Session{
		ID:           issued.SessionID,
		UserID:       res.User.ID,
		Email:        email,
		Role:         role,
		BackendToken: res.Token,
		ExpiresAt:    issued.ExpiresAt,
	}); err != nil {
		h.Log.WithError(err).Error("store session")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	res.User.Role = role
	res.User.Email = email
	api.WriteJSON(w, http.StatusOK, loginResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt, User: res.User})
}

func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req backend.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "email and password are required")
		return
	}

	user, err := h.Backend.Register(r.Context(), req)
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h Handlers) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "email is required")
		return
	}

	if err := h.Backend.ForgetPassword(r.Context(), req.Email); err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusAccepted, map[string]any{"message": "if the account exists, a reset email has been sent"})
}

// Logout always ends the portal session, even when the backend call fails.
func (h Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	if err := h.Backend.WithToken(s.BackendToken).Logout(r.Context()); err != nil {
		h.Log.WithError(err).WithField("session_id", s.ID).Warn("backend logout failed")
	}
	if err := h.Sessions.Revoke(r.Context(), s.ID, time.Now()); err != nil {
		h.Log.WithError(err).WithField("session_id", s.ID).Error("revoke session")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	user, err := h.Backend.WithToken(s.BackendToken).UserDetails(r.Context())
	if err != nil {
		api.WriteBackendError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"user": user, "session": s})
}
