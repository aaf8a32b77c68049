package domain

import "time"

// Claims is the identity assertion carried inside a bearer token. It is never persisted.
type Claims struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
