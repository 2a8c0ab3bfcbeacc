// internal/app/features/jobs/handler.go
package jobs

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	jobstore "github.com/alumlink/alumlink/internal/app/store/jobs"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/htmlsanitize"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/mailer"
	"github.com/alumlink/alumlink/internal/app/system/notify"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the job board.
type Handler struct {
	Jobs     *jobstore.Store
	Notifier *notify.Notifier
	Mailer   *mailer.Mailer
	Log      *zap.Logger
}

func NewHandler(jobs *jobstore.Store, notifier *notify.Notifier, m *mailer.Mailer, logger *zap.Logger) *Handler {
	return &Handler{Jobs: jobs, Notifier: notifier, Mailer: m, Log: logger}
}

type jobRequest struct {
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	JobType      string `json:"job_type"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	ApplyLink    string `json:"apply_link"`
	ContactEmail string `json:"contact_email"`
	Active       *bool  `json:"active"`
}

func (req *jobRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Company) == "" {
		return apperr.New(apperr.Validation, "title and company are required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperr.New(apperr.Validation, "description is required")
	}
	return nil
}

// HandleCreate posts a new job and fans a notification out to all approved
// alumni. Alumni and admins only (route-gated).
// POST /api/jobs
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	var req jobRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	job, err := h.Jobs.Create(ctx, models.Job{
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		JobType:      req.JobType,
		Description:  htmlsanitize.Sanitize(req.Description),
		Requirements: htmlsanitize.Sanitize(req.Requirements),
		ApplyLink:    req.ApplyLink,
		ContactEmail: req.ContactEmail,
		PostedBy: models.PostedBy{
			ID:   claims.UserID(),
			Name: claims.FullName(),
			Type: claims.UserType,
		},
	})
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "create job", err))
		return
	}

	// Best-effort fan-out; the posting stands even if it fails.
	h.Notifier.NewJob(ctx, &job)

	httpjson.Created(w, map[string]any{"job": job})
}

// HandleList returns job postings, newest first. Deactivated postings are
// included only when all=true.
// GET /api/jobs?all=true
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	activeOnly := r.URL.Query().Get("all") != "true"
	list, err := h.Jobs.List(ctx, activeOnly)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list jobs", err))
		return
	}
	httpjson.OK(w, map[string]any{"jobs": list, "count": len(list)})
}

// HandleGet returns one job posting.
// GET /api/jobs/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid job id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	job, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "job not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get job", err))
		return
	}
	httpjson.OK(w, map[string]any{"job": job})
}

// HandleUpdate edits a posting. Author or admin only.
// PUT /api/jobs/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid job id"))
		return
	}

	var req jobRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "job not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get job", err))
		return
	}
	if !canMutate(claims, existing.PostedBy.ID) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "only the author or an admin can edit this job"))
		return
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}
	job, err := h.Jobs.Apply(ctx, id, jobstore.Update{
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		JobType:      req.JobType,
		Description:  htmlsanitize.Sanitize(req.Description),
		Requirements: htmlsanitize.Sanitize(req.Requirements),
		ApplyLink:    req.ApplyLink,
		ContactEmail: req.ContactEmail,
		Active:       active,
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "job not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "update job", err))
		return
	}
	httpjson.OK(w, map[string]any{"job": job})
}

// HandleDelete removes a posting. Author or admin only.
// DELETE /api/jobs/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid job id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "job not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get job", err))
		return
	}
	if !canMutate(claims, existing.PostedBy.ID) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "only the author or an admin can delete this job"))
		return
	}

	if _, err := h.Jobs.Delete(ctx, id); err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "delete job", err))
		return
	}
	httpjson.OK(w, nil)
}

type applyRequest struct {
	Note string `json:"note"`
}

// HandleApply emails the posting contact on the applicant's behalf. SMTP
// failure surfaces as 502: the application did not reach anyone.
// POST /api/jobs/{id}/apply
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid job id"))
		return
	}

	var req applyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	job, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "job not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get job", err))
		return
	}
	if !job.Active {
		httpjson.Error(w, h.Log, apperr.New(apperr.Conflict, "job posting is no longer active"))
		return
	}
	if job.ContactEmail == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "job has no contact email; use the application link"))
		return
	}

	email := mailer.BuildJobApplicationEmail(mailer.JobApplicationData{
		JobTitle:       job.Title,
		Company:        job.Company,
		ApplicantName:  claims.FullName(),
		ApplicantEmail: claims.Email,
		Note:           req.Note,
	})
	email.To = job.ContactEmail

	if err := h.Mailer.Send(email); err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Upstream, "application email could not be delivered", err))
		return
	}

	httpjson.OK(w, map[string]any{"message": "application sent"})
}

// canMutate reports whether the caller may edit or delete a posting.
func canMutate(claims *sysauth.Claims, authorID primitive.ObjectID) bool {
	return claims.UserType == models.RoleAdmin || claims.UserID() == authorID
}
