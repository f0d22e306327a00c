package auth

import (
	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/users"
	"github.com/sarisari/backoffice/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StoreSummary describes a store the user can act on.
type StoreSummary struct {
	ID   uuid.UUID        `json:"id"`
	Name string           `json:"name"`
	Role enums.MemberRole `json:"role"`
}

// LoginResponse carries the tokens, user and store list of a successful login.
type LoginResponse struct {
	AccessToken   string         `json:"access_token"`
	RefreshToken  string         `json:"refresh_token"`
	ActiveStoreID *uuid.UUID     `json:"active_store_id"`
	Stores        []StoreSummary `json:"stores"`
	User          *users.UserDTO `json:"user"`
}
