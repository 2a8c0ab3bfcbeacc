// internal/app/system/notify/notifier.go

// Package notify fans domain events out into notification records. All
// methods are best-effort: failures are logged and swallowed so they never
// surface as failure of the primary operation (job creation, connection
// acceptance).
package notify

import (
	"context"
	"fmt"

	notificationstore "github.com/alumlink/alumlink/internal/app/store/notifications"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier writes notification records as a side effect of domain events.
type Notifier struct {
	users         *userstore.Store
	notifications *notificationstore.Store
	log           *zap.Logger
}

// New creates a Notifier.
func New(users *userstore.Store, notifications *notificationstore.Store, logger *zap.Logger) *Notifier {
	return &Notifier{
		users:         users,
		notifications: notifications,
		log:           logger,
	}
}

// NewJob notifies every approved alumni user (the poster included) of a new
// posting: one notification each.
func (n *Notifier) NewJob(ctx context.Context, job *models.Job) {
	alumni, err := n.users.ListByRole(ctx, models.RoleAlumni, true)
	if err != nil {
		n.log.Error("job notification fan-out: list alumni failed",
			zap.String("job_id", job.ID.Hex()),
			zap.Error(err))
		return
	}
	if len(alumni) == 0 {
		return
	}

	batch := make([]models.Notification, 0, len(alumni))
	for _, a := range alumni {
		batch = append(batch, models.Notification{
			RecipientID:   a.ID,
			RecipientType: models.RoleAlumni,
			Type:          models.NotificationJob,
			Title:         "New job posted",
			Message:       fmt.Sprintf("%s at %s", job.Title, job.Company),
			Link:          "/jobs/" + job.ID.Hex(),
		})
	}
	if err := n.notifications.CreateMany(ctx, batch); err != nil {
		n.log.Error("job notification fan-out failed",
			zap.String("job_id", job.ID.Hex()),
			zap.Int("recipients", len(batch)),
			zap.Error(err))
		return
	}
	n.log.Info("job notifications sent",
		zap.String("job_id", job.ID.Hex()),
		zap.Int("recipients", len(batch)))
}

// ConnectionAccepted notifies the student that the alumni party accepted
// their connection request.
func (n *Notifier) ConnectionAccepted(ctx context.Context, studentID primitive.ObjectID, alumniName string, connectionID primitive.ObjectID) {
	_, err := n.notifications.Create(ctx, models.Notification{
		RecipientID:   studentID,
		RecipientType: models.RoleStudent,
		Type:          models.NotificationConnection,
		Title:         "Connection accepted",
		Message:       fmt.Sprintf("%s accepted your connection request", alumniName),
		Link:          "/connections",
	})
	if err != nil {
		n.log.Error("connection-accepted notification failed",
			zap.String("student_id", studentID.Hex()),
			zap.String("connection_id", connectionID.Hex()),
			zap.Error(err))
	}
}

// NewEvent notifies every approved student and alumni of a new event.
func (n *Notifier) NewEvent(ctx context.Context, event *models.Event) {
	var batch []models.Notification
	for _, role := range []string{models.RoleStudent, models.RoleAlumni} {
		users, err := n.users.ListByRole(ctx, role, true)
		if err != nil {
			n.log.Error("event notification fan-out: list users failed",
				zap.String("role", role),
				zap.Error(err))
			return
		}
		for _, u := range users {
			batch = append(batch, models.Notification{
				RecipientID:   u.ID,
				RecipientType: role,
				Type:          models.NotificationEvent,
				Title:         "New event",
				Message:       event.Title,
				Link:          "/events/" + event.ID.Hex(),
			})
		}
	}
	if err := n.notifications.CreateMany(ctx, batch); err != nil {
		n.log.Error("event notification fan-out failed",
			zap.String("event_id", event.ID.Hex()),
			zap.Error(err))
	}
}
