package domain

import "time"

// User represents a registered bot user
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// DisplayName returns a handle suitable for logs and admin reports
func (u User) DisplayName() string {
	if u.Username == "" {
		return "<no username>"
	}
	return "@" + u.Username
}
