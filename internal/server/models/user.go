package models

import "time"

// User is a stored account. Secrets never leave the server: they carry no
// JSON name.
type User struct {
	ID                         string     `json:"id"`
	Email                      string     `json:"-"`
	UserName                   string     `json:"username"`
	PasswordHash               string     `json:"-"`
	IsVerified                 bool       `json:"-"`
	VerificationToken          *string    `json:"-"`
	VerificationTokenExpiresAt *time.Time `json:"-"`
	CreatedAt                  time.Time  `json:"-"`
	UpdatedAt                  time.Time  `json:"-"`
}

// UserSummary is the public view of a user used by every read path.
type UserSummary struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
}

// Summary strips u down to its public fields.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UserName: u.UserName}
}

// Profile is a user's public page as seen by a (possibly anonymous) caller.
type Profile struct {
	UserName       string  `json:"username"`
	FollowersCount int     `json:"followersCount"`
	FollowingCount int     `json:"followingCount"`
	Posts          []*Post `json:"posts"`
	IsFollowing    bool    `json:"isFollowing"`
}
