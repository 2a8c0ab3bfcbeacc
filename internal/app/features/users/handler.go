// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/htmlsanitize"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the member directories and profile management.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// HandleListStudents returns the approved student directory with privacy
// flags applied.
// GET /api/users/students
func (h *Handler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	h.listDirectory(w, r, models.RoleStudent, "students")
}

// HandleListAlumni returns the approved alumni directory with privacy flags
// applied.
// GET /api/users/alumni
func (h *Handler) HandleListAlumni(w http.ResponseWriter, r *http.Request) {
	h.listDirectory(w, r, models.RoleAlumni, "alumni")
}

func (h *Handler) listDirectory(w http.ResponseWriter, r *http.Request, role, key string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.ListByRole(ctx, role, true)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "list "+key, err))
		return
	}

	out := make([]models.PublicProfile, 0, len(list))
	for i := range list {
		out = append(out, list[i].Public())
	}
	httpjson.OK(w, map[string]any{key: out, "count": len(out)})
}

// HandleGetUser returns one user's public profile.
// GET /api/users/{id}
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid user id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get user", err))
		return
	}

	httpjson.OK(w, map[string]any{"user": u.Public()})
}

// HandleGetProfile returns the signed-in user's own full profile, including
// fields the privacy flags hide from the directories.
// GET /api/profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "get profile", err))
		return
	}

	httpjson.OK(w, map[string]any{"profile": ownProfile(u)})
}

type profileRequest struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	GraduationYear     int    `json:"graduation_year"`
	Department         string `json:"department"`
	Company            string `json:"company"`
	Position           string `json:"position"`
	Bio                string `json:"bio"`
	ProfilePicture     string `json:"profile_picture"`
	Phone              string `json:"phone"`
	ShowEmailInProfile *bool  `json:"show_email_in_profile"`
	ShowPhoneInProfile *bool  `json:"show_phone_in_profile"`
}

// HandleUpdateProfile updates the signed-in user's own profile. Role and
// approval state are not updatable here.
// PUT /api/profile
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := sysauth.CurrentUser(r)

	var req profileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.FirstName == "" && req.LastName == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, claims.UserID(), userstore.ProfileUpdate{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		GraduationYear:     req.GraduationYear,
		Department:         req.Department,
		Company:            req.Company,
		Position:           req.Position,
		Bio:                htmlsanitize.Sanitize(req.Bio),
		ProfilePicture:     req.ProfilePicture,
		Phone:              req.Phone,
		ShowEmailInProfile: req.ShowEmailInProfile,
		ShowPhoneInProfile: req.ShowPhoneInProfile,
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.New(apperr.NotFound, "user not found"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "update profile", err))
		return
	}

	u, err := h.Users.GetByID(ctx, claims.UserID())
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "reload profile", err))
		return
	}
	httpjson.OK(w, map[string]any{"profile": ownProfile(u)})
}

// ownProfile is the self view: everything except the password hash, privacy
// flags included so the client can render the settings form.
func ownProfile(u *models.User) map[string]any {
	return map[string]any{
		"id":                    u.ID.Hex(),
		"email":                 u.Email,
		"role":                  u.Role,
		"first_name":            u.FirstName,
		"last_name":             u.LastName,
		"graduation_year":       u.GraduationYear,
		"department":            u.Department,
		"company":               u.Company,
		"position":              u.Position,
		"bio":                   u.Bio,
		"profile_picture":       u.ProfilePicture,
		"phone":                 u.Phone,
		"is_approved":           u.IsApproved,
		"show_email_in_profile": u.ShowEmailInProfile != nil && *u.ShowEmailInProfile,
		"show_phone_in_profile": u.ShowPhoneInProfile != nil && *u.ShowPhoneInProfile,
		"created_at":            u.CreatedAt,
	}
}
