// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/alumlink/alumlink/internal/app/features/admin"
	authfeature "github.com/alumlink/alumlink/internal/app/features/auth"
	connectionsfeature "github.com/alumlink/alumlink/internal/app/features/connections"
	eventsfeature "github.com/alumlink/alumlink/internal/app/features/events"
	healthfeature "github.com/alumlink/alumlink/internal/app/features/health"
	jobsfeature "github.com/alumlink/alumlink/internal/app/features/jobs"
	messagesfeature "github.com/alumlink/alumlink/internal/app/features/messages"
	notificationsfeature "github.com/alumlink/alumlink/internal/app/features/notifications"
	usersfeature "github.com/alumlink/alumlink/internal/app/features/users"
	auditstore "github.com/alumlink/alumlink/internal/app/store/audit"
	connstore "github.com/alumlink/alumlink/internal/app/store/connections"
	eventstore "github.com/alumlink/alumlink/internal/app/store/events"
	jobstore "github.com/alumlink/alumlink/internal/app/store/jobs"
	msgstore "github.com/alumlink/alumlink/internal/app/store/messages"
	notifstore "github.com/alumlink/alumlink/internal/app/store/notifications"
	sessionstore "github.com/alumlink/alumlink/internal/app/store/sessions"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/app/system/auditlog"
	"github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/mailer"
	"github.com/alumlink/alumlink/internal/app/system/notify"
	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the session manager, the store
// layer, the shared collaborators (audit logger, notifier, mailer), and
// mounts the feature routers under /api plus the /health endpoint.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.TokenKey, appCfg.CookieDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	sessions := sessionstore.New(db)
	conns := connstore.New(db)
	msgs := msgstore.New(db, conns)
	notifs := notifstore.New(db)
	jobs := jobstore.New(db)
	events := eventstore.New(db)
	auditStore := auditstore.New(db)

	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	notifier := notify.New(users, notifs, logger)
	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authfeature.NewHandler(users, sessions, sessionMgr, auditLog, logger)
	r.Route("/api/auth", authHandler.MountRoutes)

	usersHandler := usersfeature.NewHandler(users, logger)
	connectionsHandler := connectionsfeature.NewHandler(conns, notifier, logger)
	messagesHandler := messagesfeature.NewHandler(msgs, logger)
	notificationsHandler := notificationsfeature.NewHandler(notifs, logger)
	jobsHandler := jobsfeature.NewHandler(jobs, notifier, mail, logger)
	eventsHandler := eventsfeature.NewHandler(events, notifier, logger)

	// Everything below requires a signed-in session.
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		r.Route("/api/users", usersHandler.MountRoutes)
		r.Route("/api/profile", usersHandler.MountProfileRoutes)
		r.Route("/api/connections", connectionsHandler.MountRoutes)
		r.Route("/api/messages", messagesHandler.MountRoutes)
		r.Route("/api/notifications", notificationsHandler.MountRoutes)
		r.Route("/api/jobs", func(r chi.Router) {
			jobsHandler.MountRoutes(r, sessionMgr.RequireRole)
		})
		r.Route("/api/events", func(r chi.Router) {
			eventsHandler.MountRoutes(r, sessionMgr.RequireRole)
		})
	})

	adminHandler := &adminfeature.Handler{
		Users:         users,
		Sessions:      sessions,
		Connections:   conns,
		Messages:      msgs,
		Notifications: notifs,
		Jobs:          jobs,
		Events:        events,
		Audit:         auditStore,
		AuditLog:      auditLog,
		Log:           logger,
	}
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(sessionMgr.RequireRole(models.RoleAdmin))
		adminHandler.MountRoutes(r)
	})

	return r, nil
}
