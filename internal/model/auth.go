package model

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDokter  Role = "DOKTER"
	RoleLab     Role = "LAB"
	RolePerawat Role = "PERAWAT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDokter, RoleLab, RolePerawat:
		return true
	}
	return false
}

// CanEditClinical reports whether the role may create or change patients
// and encounters. Lab staff only read them.
func (r Role) CanEditClinical() bool {
	return r != RoleLab
}

// User is the identity carried by a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewSessionUser derives the session identity from the login form:
// the id comes from the role, the display name from the mailbox part.
func NewSessionUser(email string, role Role) *User {
	name := email
	if i := strings.Index(email, "@"); i >= 0 {
		name = email[:i]
	}
	return &User{
		ID:    "user-" + strings.ToLower(string(role)),
		Name:  name,
		Email: email,
		Role:  role,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required,role"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}

// TokenClaims are the JWT claims of a session token.
type TokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) User() *User {
	return &User{ID: c.Subject, Name: c.Name, Email: c.Email, Role: c.Role}
}
