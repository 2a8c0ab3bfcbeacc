// internal/app/system/indexes/indexes.go

// Package indexes reconciles every collection's indexes at startup.
package indexes

import (
	"context"
	"errors"
	"strings"

	auditstore "github.com/alumlink/alumlink/internal/app/store/audit"
	connectionstore "github.com/alumlink/alumlink/internal/app/store/connections"
	eventstore "github.com/alumlink/alumlink/internal/app/store/events"
	jobstore "github.com/alumlink/alumlink/internal/app/store/jobs"
	messagestore "github.com/alumlink/alumlink/internal/app/store/messages"
	notificationstore "github.com/alumlink/alumlink/internal/app/store/notifications"
	sessionstore "github.com/alumlink/alumlink/internal/app/store/sessions"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureAll is called at startup. Each store's EnsureIndexes is idempotent;
// errors are aggregated so every problem is visible and startup can fail
// fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := sessionstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "sessions: "+err.Error())
	}
	conns := connectionstore.New(db)
	if err := conns.EnsureIndexes(ctx); err != nil {
		problems = append(problems, "connections: "+err.Error())
	}
	if err := messagestore.New(db, conns).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "messages: "+err.Error())
	}
	if err := notificationstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}
	if err := jobstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "jobs: "+err.Error())
	}
	if err := eventstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "events: "+err.Error())
	}
	if err := auditstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
