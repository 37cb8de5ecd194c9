package jwt

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token lifetime (7 days).
const TokenExpiryLogin = 7 * 24 * time.Hour

// AuthClaims is the signed payload of a session token. Csrf must match
// the X-XSRF-TOKEN header on mutating requests; SessionVersion must match
// the user's current version in the session store or the token is dead.
type AuthClaims struct {
	Organization    string   `json:"organization"`
	Username        string   `json:"username"`
	Root            bool     `json:"root"`
	Permissions     []string `json:"permissions"`
	EventsLimit     int      `json:"eventsLimit"`
	EventsLimitType string   `json:"eventsLimitType"`
	Csrf            string   `json:"csrf"`
	SessionVersion  int64    `json:"sessionVersion"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the claims allow the given action.
func (c *AuthClaims) HasPermission(permission string) bool {
	if c.Root {
		return true
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func GenerateToken(claims AuthClaims) (string, error) {
	secretKey := []byte(os.Getenv("JWT_SECRET"))

	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.Username,
		Issuer:    os.Getenv("JWT_ISSUER"),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiryLogin)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(secretKey)
}

func ValidateToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GenerateResetToken issues a short-lived single-purpose token for
// password resets.
func GenerateResetToken(organization, username string, ttl time.Duration) (string, error) {
	secretKey := []byte(os.Getenv("JWT_SECRET"))

	claims := jwt.MapClaims{
		"sub":          username,
		"organization": organization,
		"type":         "password_reset",
		"exp":          time.Now().Add(ttl).Unix(),
		"iat":          time.Now().Unix(),
		"iss":          os.Getenv("JWT_ISSUER"),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateResetToken checks a password-reset token and returns the
// organization and username it was issued for.
func ValidateResetToken(tokenString string) (organization, username string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	if claims["type"] != "password_reset" {
		return "", "", fmt.Errorf("wrong token type")
	}
	organization, _ = claims["organization"].(string)
	username, _ = claims["sub"].(string)
	if organization == "" || username == "" {
		return "", "", fmt.Errorf("invalid token claims")
	}
	return organization, username, nil
}
