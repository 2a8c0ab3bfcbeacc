// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"net/http"

	sessionstore "github.com/alumlink/alumlink/internal/app/store/sessions"
	userstore "github.com/alumlink/alumlink/internal/app/store/users"
	"github.com/alumlink/alumlink/internal/app/store/audit"
	"github.com/alumlink/alumlink/internal/app/system/apperr"
	sysauth "github.com/alumlink/alumlink/internal/app/system/auth"
	"github.com/alumlink/alumlink/internal/app/system/auditlog"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"github.com/alumlink/alumlink/internal/app/system/normalize"
	"github.com/alumlink/alumlink/internal/app/system/timeouts"
	"github.com/alumlink/alumlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves registration, login, logout, and token verification.
type Handler struct {
	Users      *userstore.Store
	Sessions   *sessionstore.Store
	SessionMgr *sysauth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *sessionstore.Store, sm *sysauth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		Sessions:   sessions,
		SessionMgr: sm,
		AuditLog:   audit,
		Log:        logger,
	}
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	GraduationYear int    `json:"graduation_year"`
	Department     string `json:"department"`
	Company        string `json:"company"`
	Position       string `json:"position"`
}

// HandleRegister creates a new student or alumni account. Accounts start
// unapproved; an admin must approve before the first login succeeds.
// POST /api/auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	req.Email = normalize.Email(req.Email)
	switch {
	case req.Email == "":
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "email is required"))
		return
	case len(req.Password) < 8:
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "password must be at least 8 characters"))
		return
	case req.FirstName == "" && req.LastName == "":
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "name is required"))
		return
	}
	// Admin accounts are seeded from config, never self-registered.
	if req.Role != models.RoleStudent && req.Role != models.RoleAlumni {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, `role must be "student" or "alumni"`))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "hash password", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           req.Role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		GraduationYear: req.GraduationYear,
		Department:     req.Department,
		Company:        req.Company,
		Position:       req.Position,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			httpjson.Error(w, h.Log, apperr.New(apperr.Conflict, "an account with this email already exists"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "create user", err))
		return
	}

	h.AuditLog.Registration(ctx, r, user.ID, user.Role)

	httpjson.Created(w, map[string]any{
		"user":    user.Public(),
		"message": "registration received; an administrator will review your account",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates a user and sets the session cookie pair.
// POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.AuditLog.LoginFailure(ctx, r, audit.EventLoginFailedUserNotFound, "user not found", nil)
			httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid email or password"))
			return
		}
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "lookup user", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.AuditLog.LoginFailure(ctx, r, audit.EventLoginFailedWrongPassword, "wrong password", &user.ID)
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid email or password"))
		return
	}

	if !user.IsApproved {
		h.AuditLog.LoginFailure(ctx, r, audit.EventLoginFailedNotApproved, "account not approved", &user.ID)
		httpjson.Error(w, h.Log, apperr.New(apperr.Forbidden, "account is awaiting approval"))
		return
	}

	token, sessionID, err := h.SessionMgr.Issue(user)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Wrap(apperr.Internal, "issue token", err))
		return
	}

	// The session record is bookkeeping for login history; a failure here
	// should not block the login itself.
	if _, err := h.Sessions.Create(ctx, user.ID, user.Role, sessionID,
		auditlog.ClientIP(r), r.UserAgent(), sysauth.TokenTTL); err != nil {
		h.Log.Error("record login session failed", zap.Error(err))
	}

	h.SessionMgr.SetLoginCookies(w, token, sessionID)
	h.AuditLog.LoginSuccess(ctx, r, user.ID, sessionID)

	httpjson.OK(w, map[string]any{
		"user":       user.Public(),
		"role":       user.Role,
		"session_id": sessionID,
	})
}

// HandleLogout clears the session cookies and deletes the server-side
// session record.
// POST /api/auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := sysauth.CurrentUser(r)
	if !ok {
		// Logging out without a valid session still clears cookies.
		if sc, err := r.Cookie(sysauth.SessionCookie); err == nil {
			h.SessionMgr.ClearLoginCookies(w, sc.Value)
		} else {
			h.SessionMgr.ClearLoginCookies(w, "")
		}
		httpjson.OK(w, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Sessions.Delete(ctx, claims.SessionID); err != nil {
		h.Log.Error("delete session record failed", zap.Error(err))
	}

	h.SessionMgr.ClearLoginCookies(w, claims.SessionID)
	h.AuditLog.Logout(ctx, r, claims.UserID(), claims.SessionID)

	httpjson.OK(w, nil)
}

// HandleVerify returns the decoded session payload for a valid session.
// GET /api/auth/verify
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	claims, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}
	httpjson.OK(w, map[string]any{
		"user": map[string]any{
			"id":         claims.Subject,
			"user_type":  claims.UserType,
			"email":      claims.Email,
			"first_name": claims.FirstName,
			"last_name":  claims.LastName,
			"session_id": claims.SessionID,
		},
	})
}
