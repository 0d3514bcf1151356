package domain

import "time"

// Claims is the identity carried by an access token
type Claims struct {
	UserID    int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
