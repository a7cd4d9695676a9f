package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrNoPassphrase      = errors.New("session has no passphrase")
)

// Service issues and validates session access tokens. Creating a session
// grants a token directly; a session protected by a passphrase can mint a
// fresh token later by presenting the passphrase.
type Service struct {
	jwtSecret []byte
}

func NewService(jwtSecret string) *Service {
	return &Service{jwtSecret: []byte(jwtSecret)}
}

// HashPassphrase hashes an optional session passphrase for storage.
// Returns nil for an empty passphrase (unprotected session).
func (s *Service) HashPassphrase(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), 12)
	if err != nil {
		return nil, fmt.Errorf("hash passphrase: %w", err)
	}
	return hash, nil
}

// CheckPassphrase verifies a passphrase against a stored hash. A nil hash
// means the session was created without a passphrase and cannot be
// resumed this way.
func (s *Service) CheckPassphrase(hash []byte, passphrase string) error {
	if len(hash) == 0 {
		return ErrNoPassphrase
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(passphrase)); err != nil {
		return ErrInvalidPassphrase
	}
	return nil
}

// IssueToken signs a token granting access to the given session.
func (s *Service) IssueToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses a token and returns the session ID it grants
// access to.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sessionID, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token subject")
	}

	return sessionID, nil
}
