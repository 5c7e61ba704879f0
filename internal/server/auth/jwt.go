// Package auth issues and validates the signed tokens used by the address
// book and hashes user passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a token to a single use case so that, for example, an
// emailed verification link can never be replayed as an access token.
type Purpose string

const (
	PurposeAccess            Purpose = "access"
	PurposeRefresh           Purpose = "refresh"
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

// Claims is the registered claim set plus the owning user and token purpose.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string  `json:"uid"`
	Purpose Purpose `json:"purpose"`
}

// now is swapped in tests.
var now = time.Now

func GenerateToken(userID string, purpose Purpose, secretKey []byte, validityDuration time.Duration) (string, error) {
	issued := now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(validityDuration)),
			ID:        newTokenID(),
		},
		UserID:  userID,
		Purpose: purpose,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates signature, expiry and purpose and returns the claims.
// Expired tokens yield common.ErrTokenExpired; every other failure yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, purpose Purpose, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	if claims.Purpose != purpose {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken is ParseToken for callers that only need the user.
func GetUserIDFromToken(tokenString string, purpose Purpose, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, purpose, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
