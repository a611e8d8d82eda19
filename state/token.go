package state

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether token is a JWT whose exp claim lies before
// now. The signature is not checked; opaque tokens are never expired here.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	parser := gojwt.NewParser()
	claims := gojwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(now)
}
