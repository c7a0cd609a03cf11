package service

import (
	"errors"
	"time"

	"cooptrick/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// InitJWT sets the signing secret. Call once at process start.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateJWT issues a token carrying the user's identity, so actions over
// the socket don't need to resend the profile.
func GenerateJWT(user domain.User) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not initialized")
	}

	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"icon":    user.Icon,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     now,
		"nbf":     now,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates a token and returns the user it identifies.
func ParseJWT(tokenString string) (domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return domain.User{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.User{}, errors.New("invalid claims")
	}

	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return domain.User{}, errors.New("user_id not found")
	}
	name, _ := claims["name"].(string)
	icon, _ := claims["icon"].(string)

	return domain.User{ID: id, Name: name, Icon: icon}, nil
}
