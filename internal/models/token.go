package models

import "time"

// AuthToken is a signed bearer token plus the identity it was issued for.
type AuthToken struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	ExpiresAt time.Time `json:"-"`
}
