package domain

import "time"

// Token describes an issued bearer token for a principal.
type Token struct {
	ID        string
	Principal string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
