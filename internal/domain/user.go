package domain

import "time"

// User represents an application user stored in the database.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
