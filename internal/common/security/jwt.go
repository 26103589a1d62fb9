package security

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenAuth signs and verifies the session cookie.
var TokenAuth *jwtauth.JWTAuth

func InitJWT(secret []byte) {
	TokenAuth = jwtauth.New("HS256", secret, nil)
}

// GenerateToken builds the cookie value for a stored session.
func GenerateToken(sessionID, userID, role string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid":     sessionID,
		"user_id": userID,
		"role":    role,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetSessionIDFromClaims(claims jwt.MapClaims) (string, error) {
	sid, err := stringClaim(claims, "sid")
	if err == nil && sid == "" {
		return "", fmt.Errorf("sid claim is empty")
	}
	return sid, err
}

// GetUserIDFromClaims returns the marketplace user the cookie was issued to.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "user_id")
}

// GetUserRoleFromClaims returns the role the cookie was issued for.
func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "role")
}

func stringClaim(claims jwt.MapClaims, name string) (string, error) {
	v, ok := claims[name].(string)
	if !ok {
		return "", fmt.Errorf("%s claim is missing or not a string", name)
	}
	return v, nil
}

// TokenExpiry reads the exp claim of a marketplace token. The signature is
// not checked: the marketplace owns that key, we only need to know when the
// stored session stops being useful.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
