package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           enums.UserRole
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients. The ledger
// trusts these values as the actor context and never re-derives them.
type AccessTokenClaims struct {
	UserID         uuid.UUID      `json:"user_id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	Role           enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
