package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claimsKey string

// UserClaimsKey holds *UserClaims in fiber locals and in the request context
const UserClaimsKey claimsKey = "user_claims"

var jwtSecret = []byte("secret")

// SetSecret allows injecting the secret from config
func SetSecret(secret string) {
	jwtSecret = []byte(secret)
}

type UserClaims struct {
	UserID string   `json:"user_id"`
	Tenant string   `json:"tenant"` // The token is only valid for requests bound to this tenant
	Roles  []string `json:"roles"`  // Approving roles, e.g. "facilities", "safety"
	jwt.RegisteredClaims
}

func GenerateToken(userID, tenant string, roles []string) (string, error) {
	claims := UserClaims{
		UserID: userID,
		Tenant: tenant,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenSignatureInvalid
}
