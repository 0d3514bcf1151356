package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestUser_ToPublicHasNoPassword(t *testing.T) {
	login := time.Now()
	for _, role := range []string{RoleAdmin, RoleManager, RoleSeller, RoleUser} {
		for _, locked := range []bool{false, true} {
			u := &User{
				ID:           1,
				Username:     "ana",
				PasswordHash: "$2a$10$secret",
				Role:         role,
				IsLocked:     locked,
				LastLogin:    &login,
			}
			b, err := json.Marshal(u.ToPublic())
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			s := strings.ToLower(string(b))
			if strings.Contains(s, "password") || strings.Contains(s, "secret") {
				t.Errorf("public projection leaked password: %s", b)
			}
		}
	}
}

func TestUser_ToPublicCopiesLastLogin(t *testing.T) {
	login := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := &User{LastLogin: &login}
	pub := u.ToPublic()
	*pub.LastLogin = login.Add(time.Hour)

	if !u.LastLogin.Equal(login) {
		t.Errorf("record LastLogin changed to %v", u.LastLogin)
	}
}

func TestUser_ValidateProfile(t *testing.T) {
	roles := DefaultRoles()
	tests := []struct {
		name string
		user User
		want int
	}{
		{"valid", User{Username: "ana_1", Email: "ana@example.com", Role: RoleUser}, 0},
		{"short username", User{Username: "ab", Email: "ana@example.com", Role: RoleUser}, 1},
		{"bad characters", User{Username: "ana-maria", Email: "ana@example.com", Role: RoleUser}, 1},
		{"long username", User{Username: strings.Repeat("a", 51), Email: "ana@example.com", Role: RoleUser}, 1},
		{"bad email", User{Username: "ana", Email: "ana@", Role: RoleUser}, 1},
		{"unknown role", User{Username: "ana", Email: "ana@example.com", Role: "root"}, 1},
		{"all wrong", User{Username: "a!", Email: "x", Role: ""}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.user.ValidateProfile(roles)
			if len(got) != tt.want {
				t.Errorf("ValidateProfile() = %v, want %d violations", got, tt.want)
			}
		})
	}
}

func TestUser_FullName(t *testing.T) {
	u := &User{FirstName: "Ana", LastName: "García"}
	if got := u.FullName(); got != "Ana García" {
		t.Errorf("FullName() = %q", got)
	}
	if got := (&User{FirstName: "Ana"}).FullName(); got != "Ana" {
		t.Errorf("FullName() = %q, want %q", got, "Ana")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	u := &User{Email: "old@example.com", Role: RoleUser, IsActive: true, Preferences: DefaultPreferences()}
	email := " new@example.com "
	role := RoleSeller
	prefs := Preferences{Theme: "dark", Language: "en"}

	(&UserPatch{Email: &email, Role: &role, Preferences: &prefs}).Apply(u)

	if u.Email != "new@example.com" || u.Role != RoleSeller || u.Preferences.Theme != "dark" {
		t.Errorf("Apply() = %+v", u)
	}
	if !u.IsActive {
		t.Error("unset field changed")
	}
}

func TestRoleTable(t *testing.T) {
	roles := DefaultRoles()

	admin, ok := roles.Get(RoleAdmin)
	if !ok {
		t.Fatal("admin role missing")
	}
	if !admin.HasPermission("users.delete") {
		t.Error("admin should have users.delete")
	}

	user, _ := roles.Get(RoleUser)
	if user.HasPermission("products.create") {
		t.Error("user should not have products.create")
	}

	admin.Permissions[0] = "tampered"
	again, _ := roles.Get(RoleAdmin)
	if again.Permissions[0] == "tampered" {
		t.Error("Get() returned a shared permission slice")
	}

	if roles.Has("root") {
		t.Error("Has(root) = true")
	}
}

func TestPasswordPolicy(t *testing.T) {
	strict := PasswordPolicy{MinLength: 8, RequireUppercase: true, RequireLowercase: true, RequireNumbers: true, RequireSpecial: true}

	tests := []struct {
		name     string
		policy   PasswordPolicy
		password string
		want     int
	}{
		{"default ok", DefaultPasswordPolicy(), "secret", 0},
		{"default short", DefaultPasswordPolicy(), "abc", 1},
		{"strict ok", strict, "Passw0rd!", 0},
		{"strict lowercase only", strict, "password", 3},
		{"strict empty", strict, "", 5},
		{"at bcrypt limit", DefaultPasswordPolicy(), strings.Repeat("a", MaxPasswordBytes), 0},
		{"over bcrypt limit", DefaultPasswordPolicy(), strings.Repeat("a", 80), 1},
		{"multibyte over bcrypt limit", DefaultPasswordPolicy(), strings.Repeat("é", 40), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Check(tt.password)
			if len(got) != tt.want {
				t.Errorf("Check(%q) = %v, want %d violations", tt.password, got, tt.want)
			}
			err := tt.policy.Validate(tt.password)
			if (err != nil) != (tt.want > 0) {
				t.Errorf("Validate(%q) error = %v", tt.password, err)
			}
			if err != nil && !errors.Is(err, ErrPolicyViolation) {
				t.Errorf("Validate(%q) error = %v, want ErrPolicyViolation", tt.password, err)
			}
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "secret" {
		t.Fatal("Hash() returned the plaintext")
	}
	if !h.Compare(hash, "secret") {
		t.Error("Compare() = false for the right password")
	}
	if h.Compare(hash, "Secret") {
		t.Error("Compare() = true for the wrong password")
	}

	if NewBcryptHasher(0).Cost != 10 {
		t.Error("out-of-range cost did not fall back to the default")
	}
}
