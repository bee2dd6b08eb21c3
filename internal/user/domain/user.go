package domain

import (
	"context"
	"time"
)

// Role types
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// User represents a POS operator account
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"passwordHash"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// IsAdmin checks if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActiveAdmin checks if user counts towards the active admin minimum
func (u *User) IsActiveAdmin() bool {
	return u.Active && u.IsAdmin()
}

// UserView is a User without its password hash
type UserView struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// View strips the password hash
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}

// Session is the single logged-in session of the terminal
type Session struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	Username   string        `json:"username"`
	Name       string        `json:"name"`
	Role       string        `json:"role"`
	LoggedInAt time.Time     `json:"loggedInAt"`
	ExpiresAt  time.Time     `json:"expiresAt"`
	TTL        time.Duration `json:"ttl"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
	// Mutate applies fn to the full user list and writes it back only when
	// fn succeeds. Guards that span several users run inside fn.
	Mutate(ctx context.Context, fn func(users *[]User) error) error
}

// SessionRepository stores the current session
type SessionRepository interface {
	Get(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Clear(ctx context.Context) error
}

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// CountActiveAdmins counts the users that keep the store administrable
func CountActiveAdmins(users []User) int {
	n := 0
	for i := range users {
		if users[i].IsActiveAdmin() {
			n++
		}
	}
	return n
}
