package domain

import "time"

// Account represents a registered user. The email is the user identifier everywhere else.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
