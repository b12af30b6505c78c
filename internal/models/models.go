package models

import (
	"strings"
	"time"
)

// Role is the account type attached to an identity. The backend calls riders
// "user", so that is the wire value for RoleRider.
type Role string

const (
	RoleRider  Role = "user"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// ParseRole accepts the wire names plus "rider" as an alias.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "rider":
		return RoleRider, true
	case "driver":
		return RoleDriver, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	return r == RoleRider || r == RoleDriver || r == RoleAdmin
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type LocationWithAddress struct {
	Lat     float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" validate:"gte=-180,lte=180"`
	Address string  `json:"address,omitempty"`
}

func (l LocationWithAddress) Point() Location { return Location{Lat: l.Lat, Lng: l.Lng} }

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=user driver admin"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Identity is the authenticated principal of a session.
type Identity struct {
	User      User   `json:"user"`
	AuthToken string `json:"token"`
	Demo      bool   `json:"demo,omitempty"`
}

func (i Identity) UserID() string      { return i.User.ID }
func (i Identity) DisplayName() string { return i.User.Name }
func (i Identity) Role() Role          { return i.User.Role }

// AvailabilityState is the cached answer to "is the backend reachable".
type AvailabilityState struct {
	Reachable     bool      `json:"reachable"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

// AvailabilityEvent is published whenever reachability flips.
type AvailabilityEvent struct {
	Reachable  bool      `json:"reachable"`
	CheckedAt  time.Time `json:"checkedAt"`
	BackendURL string    `json:"backendUrl"`
}
