// internal/handler/router.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/controller"
	"github.com/unclebandit/mailmerge-backend/internal/metrics"
)

// Router holds everything the HTTP surface is built from.
type Router struct {
	Auth      *controller.AuthController
	Users     *controller.UserController
	Mail      *controller.MailController
	Campaigns *controller.CampaignController
	Templates *controller.TemplateController

	Tokens  TokenParser
	Metrics *metrics.Recorder
	Logger  *zap.Logger

	CORSOrigins []string
	// Ping checks the backing store for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(rt.Logger, rt.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is live!"))
	})
	r.Get("/healthz", rt.health)
	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics.Handler())
	}

	r.Post("/api/auth/google-login", rt.Auth.GoogleLogin)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(rt.Tokens))

		r.Route("/api/user", func(r chi.Router) {
			r.Get("/profile", rt.Users.Profile)
			r.Post("/sendMails", rt.Mail.SendMails)
			r.Get("/listMails", rt.Campaigns.ListCampaigns)
			r.Get("/mails/{id}", rt.Campaigns.GetCampaignDetails)
			r.Post("/preview", rt.Campaigns.Preview)
		})

		r.Route("/api/template", func(r chi.Router) {
			r.Post("/add-template", rt.Templates.Create)
			r.Post("/list-templates", rt.Templates.List)
			r.Post("/get-template", rt.Templates.Get)
			r.Post("/update-template", rt.Templates.Update)
			r.Post("/delete-template", rt.Templates.Delete)
		})
	})

	return r
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.Ping(ctx); err != nil {
			if rt.Logger != nil {
				rt.Logger.Warn("health check failed", zap.Error(err))
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
