package domain

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/adventurer/svg?seed="

// User is the profile of whoever is signed in to a session.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	Streak    int    `json:"streak"`
}

// MockUser returns the fixed demo profile used by the credential-free login,
// with the email replaced by the one the caller typed in.
func MockUser(email string) User {
	return User{
		ID:        "1",
		Name:      "Alex Ryder",
		Email:     email,
		AvatarURL: AvatarURL("Alex"),
		XP:        1250,
		Level:     2,
		Streak:    5,
	}
}

// NewUser creates a fresh profile for signup: no xp, level 1, no streak.
func NewUser(name, email string) User {
	return User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		AvatarURL: AvatarURL(name),
		XP:        0,
		Level:     1,
		Streak:    0,
	}
}

// AvatarURL builds the deterministic placeholder avatar for a seed. The seed
// is escaped as a URI component, so spaces become %20 rather than '+'.
func AvatarURL(seed string) string {
	return avatarBaseURL + strings.ReplaceAll(url.QueryEscape(seed), "+", "%20")
}

// WithAvatar returns a copy of u with a new avatar.
func (u User) WithAvatar(avatarURL string) User {
	u.AvatarURL = avatarURL
	return u
}
