package models

import "github.com/google/uuid"

// Actor is the authenticated caller of an operation, as established by the bearer token.
type Actor struct {
	ID   uuid.UUID
	Role UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

// Anonymous is used for public reads without a token.
var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}
