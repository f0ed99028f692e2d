package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	GenerateToken(email string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}
