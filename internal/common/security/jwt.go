package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is where the dashboard keeps its own token; jwtauth.TokenFromCookie reads "jwt".
const CookieName = "jwt"

var TokenAuth *jwtauth.JWTAuth

var tokenExp time.Duration

func InitJWT(key []byte, exp time.Duration) {
	TokenAuth = jwtauth.New("HS256", key, nil)
	tokenExp = exp
}

// TokenExpiry is how long a dashboard token, and so its cookie, stays valid.
func TokenExpiry() time.Duration { return tokenExp }

// GenerateSessionToken signs a dashboard token pointing at session storage entry sid.
// The backend bearer token never leaves the server.
func GenerateSessionToken(sid string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(tokenExp).Unix(),
		"iat": time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetSessionIDFromClaims(claims map[string]any) (string, error) {
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("sid claim is missing or not a string")
	}
	return sid, nil
}
