package domain

import "time"

// User is the domain entity for a user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated caller, resolved once from the bearer token
// and passed explicitly into every task operation.
type Identity struct {
	ID    int64
	Email string
}
