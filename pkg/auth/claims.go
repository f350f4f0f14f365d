package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DriverTokenPayload captures the data available when minting a driver JWT.
type DriverTokenPayload struct {
	DriverID uuid.UUID
	Name     string
	JTI      string
}

// DriverTokenClaims represents the typed JWT issued to the driver app.
type DriverTokenClaims struct {
	DriverID uuid.UUID `json:"driver_id"`
	Name     string    `json:"name"`
	jwt.RegisteredClaims
}
