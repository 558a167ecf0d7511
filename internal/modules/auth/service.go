package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/database"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = apperr.Unauthorized("Invalid email or password")

type service struct {
	vendorRepo vendor.Repository
	secret     []byte
	ttl        time.Duration
}

// NewService creates a new auth service signing tokens with secret.
func NewService(vendorRepo vendor.Repository, secret string, ttl time.Duration) Service {
	return &service{vendorRepo: vendorRepo, secret: []byte(secret), ttl: ttl}
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	v, err := s.vendorRepo.GetVendorByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := &Claims{
		VendorID: v.ID.String(),
		StandardClaims: jwt.StandardClaims{
			Subject:   v.ID.String(),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Session{Token: tokenString, VendorID: v.ID, ExpiresAt: expiresAt}, nil
}

func (s *service) ParseToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperr.Unauthorized("Invalid token")
	}

	vendorID, err := uuid.Parse(claims.VendorID)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("Invalid token")
	}
	return vendorID, nil
}
