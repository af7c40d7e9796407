package models

import "time"

// DirectoryUser represents a row on the user-management screen. Rows live in
// the relational directory, not in the key-value store.
type DirectoryUser struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	Role          string    `json:"role" db:"role"`
	Status        string    `json:"status" db:"status"`
	JoinedDate    time.Time `json:"joinedDate" db:"joined_date"`
	TwoFactorAuth bool      `json:"twoFactorAuth" db:"two_factor_auth"`
	LoginType     string    `json:"loginType" db:"login_type"`
	Avatar        string    `json:"avatar,omitempty" db:"avatar"`
}
