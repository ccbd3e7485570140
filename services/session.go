package services

import (
	"time"

	"github.com/yeremiapane/qr-restaurant/models"
)

// Session is the caller identity resolved from a bearer token. It is built
// once per request by the auth middleware and handed to every service call.
type Session struct {
	UserID       string
	Role         models.Role
	RestaurantID string
	TokenID      string
	ExpiresAt    time.Time
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}
