package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	EmailMaxLength    = 255
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Preferences are per-user UI settings
type Preferences struct {
	Theme         string `json:"theme" yaml:"theme"`
	Language      string `json:"language" yaml:"language"`
	Notifications bool   `json:"notifications" yaml:"notifications"`
}

// DefaultPreferences returns the preferences given to new accounts
func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", Language: "es", Notifications: true}
}

// User is the internal account record, including the password hash
type User struct {
	ID            int
	Username      string
	Email         string
	PasswordHash  string
	Role          string
	FirstName     string
	LastName      string
	IsActive      bool
	IsLocked      bool
	LoginAttempts int
	Preferences   Preferences
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLogin     *time.Time
}

// PublicUser is the projection safe to return at any boundary.
// It has no password field.
type PublicUser struct {
	ID            int         `json:"id"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	Role          string      `json:"role"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	IsActive      bool        `json:"isActive"`
	IsLocked      bool        `json:"isLocked"`
	LoginAttempts int         `json:"loginAttempts"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	LastLogin     *time.Time  `json:"lastLogin"`
}

// ToPublic converts the internal record into its public projection
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		IsActive:      u.IsActive,
		IsLocked:      u.IsLocked,
		LoginAttempts: u.LoginAttempts,
		Preferences:   u.Preferences,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLogin:     cloneTime(u.LastLogin),
	}
}

// Clone returns a deep copy
func (u *User) Clone() *User {
	c := *u
	c.LastLogin = cloneTime(u.LastLogin)
	return &c
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Touch refreshes UpdatedAt, keeping it strictly increasing
func (u *User) Touch(now time.Time) {
	u.UpdatedAt = nextTimestamp(u.UpdatedAt, now)
}

// ValidateProfile checks username, email and role against roles
func (u *User) ValidateProfile(roles RoleTable) []string {
	var violations []string

	n := utf8.RuneCountInString(u.Username)
	switch {
	case n < UsernameMinLength:
		violations = append(violations, "username must be at least 3 characters")
	case n > UsernameMaxLength:
		violations = append(violations, "username must be at most 50 characters")
	}
	if n > 0 && !usernamePattern.MatchString(u.Username) {
		violations = append(violations, "username may only contain letters, numbers and underscores")
	}

	if !emailPattern.MatchString(u.Email) {
		violations = append(violations, "email is invalid")
	} else if len(u.Email) > EmailMaxLength {
		violations = append(violations, "email must be at most 255 characters")
	}

	if !roles.Has(u.Role) {
		violations = append(violations, "role is invalid")
	}

	return violations
}

// UserInput is the data accepted when creating an account
type UserInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	FirstName   string
	LastName    string
	Preferences *Preferences
}

// UserPatch carries a partial update. Only these fields can change.
type UserPatch struct {
	Email       *string      `json:"email,omitempty"`
	FirstName   *string      `json:"firstName,omitempty"`
	LastName    *string      `json:"lastName,omitempty"`
	Role        *string      `json:"role,omitempty"`
	IsActive    *bool        `json:"isActive,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Apply writes the patch onto u
func (p *UserPatch) Apply(u *User) {
	if p == nil {
		return
	}
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
}

// UserStatistics summarises the user directory
type UserStatistics struct {
	TotalUsers   int            `json:"totalUsers"`
	ActiveUsers  int            `json:"activeUsers"`
	LockedUsers  int            `json:"lockedUsers"`
	UsersByRole  map[string]int `json:"usersByRole"`
	RecentLogins int            `json:"recentLogins"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
