package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// Service defines the interface for vendor authentication.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	ParseToken(token string) (uuid.UUID, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	VendorID  uuid.UUID `json:"vendorId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are the JWT claims issued to vendors.
type Claims struct {
	VendorID string `json:"vendorId"`
	jwt.StandardClaims
}
