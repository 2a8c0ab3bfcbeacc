// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAlumni  = "alumni"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// User represents students, alumni, and admins in a single collection,
// distinguished by the Role field.
//
// Privacy flags are tri-state: nil means "unset", which readers must treat
// the same as false (hidden).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // student | alumni | admin
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`

	// Profile fields. Graduation/department apply to students and alumni;
	// company/position apply to alumni.
	GraduationYear int    `bson:"graduation_year,omitempty" json:"graduation_year,omitempty"`
	Department     string `bson:"department,omitempty" json:"department,omitempty"`
	Company        string `bson:"company,omitempty" json:"company,omitempty"`
	Position       string `bson:"position,omitempty" json:"position,omitempty"`
	Bio            string `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePicture string `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	Phone          string `bson:"phone,omitempty" json:"-"`

	// Accounts must be approved by an admin before they can log in.
	IsApproved bool `bson:"is_approved" json:"is_approved"`

	ShowEmailInProfile *bool `bson:"show_email_in_profile,omitempty" json:"show_email_in_profile,omitempty"`
	ShowPhoneInProfile *bool `bson:"show_phone_in_profile,omitempty" json:"show_phone_in_profile,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the display name for notifications and directory entries.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PublicProfile is the directory-safe projection of a User. Email and phone
// are included only when the corresponding privacy flag is explicitly true.
type PublicProfile struct {
	ID             primitive.ObjectID `json:"id"`
	Role           string             `json:"role"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	GraduationYear int                `json:"graduation_year,omitempty"`
	Department     string             `json:"department,omitempty"`
	Company        string             `json:"company,omitempty"`
	Position       string             `json:"position,omitempty"`
	Bio            string             `json:"bio,omitempty"`
	ProfilePicture string             `json:"profile_picture,omitempty"`
	Email          string             `json:"email,omitempty"`
	Phone          string             `json:"phone,omitempty"`
}

// Public applies the privacy flags and returns the directory projection.
func (u *User) Public() PublicProfile {
	p := PublicProfile{
		ID:             u.ID,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		GraduationYear: u.GraduationYear,
		Department:     u.Department,
		Company:        u.Company,
		Position:       u.Position,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
	if u.ShowEmailInProfile != nil && *u.ShowEmailInProfile {
		p.Email = u.Email
	}
	if u.ShowPhoneInProfile != nil && *u.ShowPhoneInProfile {
		p.Phone = u.Phone
	}
	return p
}
