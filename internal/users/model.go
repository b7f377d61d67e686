package users

import "time"

// User is an account allowed to upload and manage documents.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
