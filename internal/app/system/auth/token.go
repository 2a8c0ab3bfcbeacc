// internal/app/system/auth/token.go
package auth

import (
	"errors"
	"time"

	"github.com/alumlink/alumlink/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const issuer = "alumlink"

// TokenTTL is the lifetime of a session token and its cookies.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken indicates the token failed verification for any reason:
// bad signature, expiry, malformed input, or wrong issuer. Callers treat all
// of these the same way (401), so the distinction is not surfaced.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed session payload. One token is issued per login;
// SessionID distinguishes concurrent logins by the same user.
type Claims struct {
	UserType  string `json:"user_type"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// UserID parses the token subject into an ObjectID. Returns the zero id if
// the subject is malformed; Verify guarantees a well-formed subject for any
// token this service issued.
func (c *Claims) UserID() primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// FullName returns the display name carried in the token.
func (c *Claims) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Issue signs a fresh session token for the user with a new random session
// id. The caller persists the token via cookies; Issue itself has no side
// effects.
func (m *SessionManager) Issue(u *models.User) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	now := time.Now().UTC()

	claims := Claims{
		UserType:  u.Role,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

// Verify validates the token's signature and expiry and returns its decoded
// claims. Malformed input is classified as ErrInvalidToken, never a panic.
func (m *SessionManager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != issuer || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	if claims.UserID() == primitive.NilObjectID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
