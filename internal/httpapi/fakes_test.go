package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"energyportal/internal/activity"
	"energyportal/internal/session"
)

type memSessions struct {
	mu   sync.Mutex
	rows map[string]session.Session
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[string]session.Session{}}
}

func (m *memSessions) Create(_ context.Context, s session.Session) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = time.Now()
	m.rows[s.ID] = s
	return &s, nil
}

func (m *memSessions) GetActive(_ context.Context, id string, now time.Time) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok || !s.Active(now) {
		return nil, session.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Revoke(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[id]; ok && s.RevokedAt == nil {
		s.RevokedAt = &now
		m.rows[id] = s
	}
	return nil
}

type memActivity struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (m *memActivity) Record(_ context.Context, entries ...activity.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memActivity) ListByBooking(_ context.Context, n string) ([]activity.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []activity.Entry{}
	for _, e := range m.entries {
		if e.BookingNumber == n {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeBackend mimics the booking backend for two accounts: a customer who
// owns BK-100 and an admin.
type fakeBackend struct {
	mu       sync.Mutex
	stage    string
	accepted bool
	auditor  map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{stage: "reportGenerated"}
}

func (b *fakeBackend) reply(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch {
	case r.URL.Path == "/auth/login":
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		switch {
		case creds.Email == "jane@example.com" && creds.Password == "pw":
			b.reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"token": "customer-bt",
				"user":  map[string]any{"id": "u-jane", "email": creds.Email, "role": "customer"},
			}})
		case creds.Email == "ops@example.com" && creds.Password == "pw":
			b.reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"token": "admin-bt",
				"user":  map[string]any{"id": "u-ops", "email": creds.Email, "role": "admin"},
			}})
		default:
			b.reply(w, http.StatusUnauthorized, map[string]any{"success": false, "detail": "Invalid email or password"})
		}
		return
	case r.URL.Path == "/auth/logout":
		b.reply(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	if token != "customer-bt" && token != "admin-bt" {
		b.reply(w, http.StatusUnauthorized, map[string]any{"success": false, "detail": "Not authenticated"})
		return
	}

	switch {
	case r.URL.Path == "/auth/user-details":
		b.reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "u-jane", "firstName": "Jane"}})
	case r.URL.Path == "/user/bookings/BK-100":
		link := ""
		if b.accepted {
			link = "https://sign.example.com/done/ct-1"
		}
		b.reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"bookingNumber":      "BK-100",
			"currentStage":       b.stage,
			"utilityBillDetails": map[string]any{"count": 3},
			"proposalDetails":    map[string]any{"contractId": "ct-1", "completedContractLink": link},
			"paymentDetails":     map[string]any{"status": "Pending"},
		}})
	case r.URL.Path == "/user/bookings/BK-100/contract":
		b.reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"contractId": "ct-1", "sessionUrl": "https://sign.example.com/s/ct-1"}})
	case r.URL.Path == "/user/bookings/BK-100/contract/ct-1/accept":
		b.accepted = true
		b.stage = "proposalSigned"
		b.reply(w, http.StatusOK, map[string]any{"success": true})
	case r.URL.Path == "/user/bookings/BK-100/auditor" && r.Method == http.MethodPut:
		_ = json.NewDecoder(r.Body).Decode(&b.auditor)
		b.reply(w, http.StatusOK, map[string]any{"success": true})
	case r.URL.Path == "/admin/auditors/images":
		b.reply(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{{"id": "img-1", "url": "https://cdn.example.com/a.png"}}})
	default:
		b.reply(w, http.StatusNotFound, map[string]any{"success": false, "detail": "Not found"})
	}
}
