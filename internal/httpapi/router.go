package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"energyportal/internal/activity"
	"energyportal/internal/admin"
	"energyportal/internal/api"
	"energyportal/internal/auth"
	"energyportal/internal/backend"
	"energyportal/internal/booking"
	"energyportal/internal/contract"
	"energyportal/internal/fetchguard"
	"energyportal/internal/session"
	"energyportal/pkg/authtoken"
	"energyportal/pkg/config"
)

// SessionStore is implemented by session.Repository.
type SessionStore interface {
	Create(ctx context.Context, s session.Session) (*session.Session, error)
	GetActive(ctx context.Context, id string, now time.Time) (*session.Session, error)
	Revoke(ctx context.Context, id string, now time.Time) error
}

// ActivityStore is implemented by activity.Repository.
type ActivityStore interface {
	Record(ctx context.Context, entries ...activity.Entry) error
	ListByBooking(ctx context.Context, bookingNumber string) ([]activity.Entry, error)
}

type Dependencies struct {
	Cfg      config.Config
	Log      logrus.FieldLogger
	Backend  backend.Client
	Sessions SessionStore
	Activity ActivityStore
	Signer   authtoken.Signer
	Guard    *fetchguard.Guard
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Guard == nil {
		deps.Guard = fetchguard.New()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(deps.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authHandlers := auth.Handlers{
		Backend:  deps.Backend,
		Sessions: deps.Sessions,
		Signer:   deps.Signer,
		Log:      deps.Log,
	}
	bookingHandlers := booking.Handlers{
		Backend:  deps.Backend,
		Activity: deps.Activity,
		Guard:    deps.Guard,
		Log:      deps.Log,
	}
	contractHandlers := contract.Handlers{
		Backend:  deps.Backend,
		Activity: deps.Activity,
		Log:      deps.Log,
	}
	adminHandlers := admin.Handlers{
		Backend:  deps.Backend,
		Activity: deps.Activity,
		Log:      deps.Log,
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		// The portal frontend lives on its own origin.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.PortalAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAgeSeconds:  600,
		}))

		// Public
		r.Post("/auth/login", authHandlers.Login)
		r.Post("/auth/register", authHandlers.Register)
		r.Post("/auth/forget-password", authHandlers.ForgetPassword)
		r.Get("/services/{id}", bookingHandlers.ServiceDetail)

		// Session-scoped
		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Signer, deps.Sessions, deps.Log))

			r.Post("/auth/logout", authHandlers.Logout)
			r.Get("/me", authHandlers.Me)

			r.Route("/bookings/{bookingNumber}", func(r chi.Router) {
				r.Get("/", bookingHandlers.View)
				r.Get("/progress", bookingHandlers.Progress)
				r.Get("/recommended-videos", bookingHandlers.RecommendedVideos)
				r.Get("/activity", bookingHandlers.ListActivity)

				r.Get("/contract", contractHandlers.Get)
				r.Get("/contract/{contractId}", contractHandlers.GetByID)
				r.Post("/contract/{contractId}/accept", contractHandlers.Accept)
				r.Post("/contract/{contractId}/events", contractHandlers.Events)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(api.RequireAdmin)

				r.Get("/auditors/images", adminHandlers.ListAuditorImages)
				r.Put("/bookings/{bookingNumber}/auditor", adminHandlers.UpdateAuditor)
			})
		})
	})

	return r
}
